package api

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handkeys/internal/logger"
	"github.com/ayusman/handkeys/internal/store"
)

// MaxListLimit caps ?limit on the journal listing.
const MaxListLimit = 500

// RecognitionsHandler serves the recognition journal.
type RecognitionsHandler struct {
	store *store.Store
	log   logrus.FieldLogger
}

// NewRecognitionsHandler creates a handler over s.
func NewRecognitionsHandler(s *store.Store, log logrus.FieldLogger) *RecognitionsHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RecognitionsHandler{store: s, log: log}
}

type listRecognitionsResponse struct {
	Recognitions []store.Recognition `json:"recognitions"`
	Counts       map[string]int      `json:"counts"`
}

// List handles GET /api/recognitions?limit=N.
func (h *RecognitionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	recs, err := h.store.Recognitions().List(r.Context(), limit)
	if err != nil {
		h.internalError(w, err, "failed to list recognitions")
		return
	}
	counts, err := h.store.Recognitions().CountByLabel(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to count recognitions")
		return
	}

	writeJSON(w, http.StatusOK, listRecognitionsResponse{Recognitions: recs, Counts: counts})
}

func (h *RecognitionsHandler) internalError(w http.ResponseWriter, err error, msg string) {
	traceID := logger.ErrorWithTraceID(h.log, err, msg)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg, TraceID: traceID})
}
