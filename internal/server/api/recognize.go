package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handkeys/internal/logger"
	"github.com/ayusman/handkeys/internal/recognize"
	"github.com/ayusman/handkeys/internal/store"
	"github.com/ayusman/handkeys/internal/vector"
)

// RecognizeHandler runs recognition cycles on landmarks posted by a client.
type RecognizeHandler struct {
	recognizer *recognize.Recognizer
	journal    *store.RecognitionRepository
	log        logrus.FieldLogger
}

// NewRecognizeHandler creates a handler. journal may be nil.
func NewRecognizeHandler(r *recognize.Recognizer, journal *store.RecognitionRepository, log logrus.FieldLogger) *RecognizeHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RecognizeHandler{recognizer: r, journal: journal, log: log}
}

type landmarksRequest struct {
	Landmarks json.RawMessage `json:"landmarks" validate:"required"`
}

type outcomeResponse struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Step     string    `json:"step,omitempty"`
	Requests int       `json:"requests"`
	At       time.Time `json:"at"`
	Error    string    `json:"error,omitempty"`
}

type sweepResponse struct {
	Results []recognize.SweepResult `json:"results"`
}

// Recognize handles POST /api/recognize.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req landmarksRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := h.recognizer.Recognize(r.Context(), req.Landmarks)
	resp := outcomeResponse{
		ID:       out.ID,
		Label:    out.Label,
		Step:     out.Step,
		Requests: out.Requests,
		At:       out.At,
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}

	if out.InvalidInput() {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	if out.Recognized() && h.journal != nil {
		err := h.journal.Create(r.Context(), &store.Recognition{
			ID:        out.ID,
			Label:     out.Label,
			Step:      out.Step,
			Requests:  out.Requests,
			Source:    store.SourceAPI,
			CreatedAt: out.At,
		})
		if err != nil {
			logger.ErrorWithTraceID(h.log, err, "failed to journal recognition")
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Sweep handles POST /api/sweep.
func (h *RecognizeHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req landmarksRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := vector.Build(req.Landmarks)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{Results: h.recognizer.Orchestrator().Sweep(r.Context(), v)})
}
