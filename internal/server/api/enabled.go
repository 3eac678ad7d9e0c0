package api

import "net/http"

// Toggle switches key presses on and off.
type Toggle interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// EnabledHandler exposes a Toggle.
type EnabledHandler struct {
	toggle Toggle
}

// NewEnabledHandler creates a handler over t.
func NewEnabledHandler(t Toggle) *EnabledHandler {
	return &EnabledHandler{toggle: t}
}

type enabledBody struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Get handles GET /api/enabled.
func (h *EnabledHandler) Get(w http.ResponseWriter, r *http.Request) {
	enabled := h.toggle.IsEnabled()
	writeJSON(w, http.StatusOK, enabledBody{Enabled: &enabled})
}

// Put handles PUT /api/enabled.
func (h *EnabledHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req enabledBody
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.toggle.SetEnabled(*req.Enabled)
	h.Get(w, r)
}
