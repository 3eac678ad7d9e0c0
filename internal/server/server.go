// Package server is the local status HTTP server: health, on-demand
// recognition, the journal, the live event stream and the camera preview.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handkeys/internal/capture"
	"github.com/ayusman/handkeys/internal/recognize"
	"github.com/ayusman/handkeys/internal/server/api"
	"github.com/ayusman/handkeys/internal/store"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the server's collaborators. Routes whose collaborator is nil
// are not registered.
type Config struct {
	StaticDir  string
	Recognizer *recognize.Recognizer
	Store      *store.Store
	Preview    *capture.Preview
	Events     *Hub
	Toggle     api.Toggle
	Logger     logrus.FieldLogger
}

// Server is the HTTP handler for the status API.
type Server struct {
	config Config
	router *mux.Router
	log    logrus.FieldLogger
	start  time.Time
}

// New creates a Server with its routes registered.
func New(config Config) *Server {
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		log:    log,
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router.PathPrefix("/api").Subrouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.config.Recognizer != nil {
		var journal *store.RecognitionRepository
		if s.config.Store != nil {
			journal = s.config.Store.Recognitions()
		}
		h := api.NewRecognizeHandler(s.config.Recognizer, journal, s.log)
		r.HandleFunc("/recognize", h.Recognize).Methods(http.MethodPost)
		r.HandleFunc("/sweep", h.Sweep).Methods(http.MethodPost)
	}

	if s.config.Store != nil {
		h := api.NewRecognitionsHandler(s.config.Store, s.log)
		r.HandleFunc("/recognitions", h.List).Methods(http.MethodGet)
	}

	if s.config.Toggle != nil {
		h := api.NewEnabledHandler(s.config.Toggle)
		r.HandleFunc("/enabled", h.Get).Methods(http.MethodGet)
		r.HandleFunc("/enabled", h.Put).Methods(http.MethodPut)
	}

	if s.config.Events != nil {
		r.Handle("/events", s.config.Events).Methods(http.MethodGet)
	}

	if s.config.Preview != nil {
		r.Handle("/stream", NewStreamHandler(s.config.Preview)).Methods(http.MethodGet)
	}

	if s.config.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.Toggle != nil {
		response["enabled"] = s.config.Toggle.IsEnabled()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := codec.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.config.Events != nil {
			s.config.Events.Close()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
