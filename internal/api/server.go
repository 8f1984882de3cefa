// internal/api/server.go

// Package api is the REST front of the charger bridge.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/comms"
	"github.com/tamzrod/charger-bridge/internal/status"
)

// Guard runs a charger conversation with exclusive access.
// *exclusive.Guard implements it.
type Guard interface {
	Do(ctx context.Context, name string, fn func(m *comms.Manager) error) error
}

// Server serves the charger over HTTP. Every handler talks to the
// charger only through the guard.
type Server struct {
	guard   Guard
	tracker *status.Tracker
	router  *mux.Router
	server  *http.Server
	log     logrus.FieldLogger
}

func NewServer(guard Guard, tracker *status.Tracker, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		guard:   guard,
		tracker: tracker,
		router:  mux.NewRouter(),
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/channel/{ch}", s.handleChannel).Methods(http.MethodGet)
	r.HandleFunc("/control", s.handleControl).Methods(http.MethodGet)

	for _, op := range []comms.Operation{
		comms.OperationCharge,
		comms.OperationDischarge,
		comms.OperationStorage,
		comms.OperationCycle,
		comms.OperationBalance,
	} {
		r.HandleFunc("/"+op.String()+"/{ch}/{slot}", s.handleRun(op)).Methods(http.MethodPut)
	}
	r.HandleFunc("/stop/{ch}", s.handleStop).Methods(http.MethodPut)

	r.HandleFunc("/system", s.handleGetSystem).Methods(http.MethodGet)
	r.HandleFunc("/system", s.handlePutSystem).Methods(http.MethodPut)
	r.HandleFunc("/system/beep/{index}", s.handleBeep).Methods(http.MethodPut)

	r.HandleFunc("/preset", s.handlePresetList).Methods(http.MethodGet)
	r.HandleFunc("/addpreset", s.handleAddPreset).Methods(http.MethodPut)
	r.HandleFunc("/preset/{slot}", s.handleGetPreset).Methods(http.MethodGet)
	r.HandleFunc("/preset/{slot}", s.handlePutPreset).Methods(http.MethodPut)
	r.HandleFunc("/preset/{slot}", s.handleDeletePreset).Methods(http.MethodDelete)

	r.HandleFunc("/presetorder", s.handleGetPresetOrder).Methods(http.MethodGet)
	r.HandleFunc("/presetorder", s.handlePostPresetOrder).Methods(http.MethodPost)
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on addr in the background.
func (s *Server) Start(addr string) {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.WithField("listen", addr).Info("starting HTTP server")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("HTTP server error")
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.log.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
