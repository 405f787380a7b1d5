// Package rest exposes the datasets, trends, and run control over HTTP.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/pipeline"
)

// Server represents the REST API server.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server over the run service.
func NewServer(port string, svc *pipeline.Service, defaultStartYear, defaultEndYear int, log zerolog.Logger) *Server {
	handler := NewHandler(svc, defaultStartYear, defaultEndYear)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Datasets and trends from the latest completed run.
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/players", handler.GetPlayers).Methods("GET")
	api.HandleFunc("/trends", handler.GetTrends).Methods("GET")

	// Run control.
	api.HandleFunc("/runs", handler.StartRun).Methods("POST")
	api.HandleFunc("/runs/status", handler.RunStatus).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
