// Package websocket streams run progress events to connected clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Server represents the WebSocket server.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	log    zerolog.Logger
}

// NewServer creates a new WebSocket server.
func NewServer(log zerolog.Logger) *Server {
	return &Server{hub: NewHub(), log: log}
}

// Start starts the WebSocket server.
func (s *Server) Start(port string) error {
	s.port = port

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/runs", s.handleRuns)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	s.log.Info().Str("port", port).Msg("websocket server listening")
	return s.server.ListenAndServe()
}

// handleRuns subscribes a client to the run event stream.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
		log:  s.log,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Reporter returns a pipeline.Reporter that broadcasts each event as a
// JSON message to all connected clients.
func (s *Server) Reporter() pipeline.Reporter {
	return &hubReporter{hub: s.hub}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// hubReporter marshals run events into the wire format.
type hubReporter struct {
	hub *Hub
}

type event struct {
	Type    string `json:"type"`
	Year    int    `json:"year,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Message string `json:"message,omitempty"`
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r *hubReporter) send(ev event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	r.hub.Broadcast(payload)
}

func (r *hubReporter) OnRunStart(startYear, endYear int) {
	r.send(event{Type: "run_start", Message: fmt.Sprintf("seasons %d-%d", startYear, endYear)})
}

func (r *hubReporter) OnSeasonDone(year int, dataset string, rows int, err error) {
	ev := event{Type: "season", Year: year, Dataset: dataset, Rows: rows}
	if err != nil {
		ev.Error = err.Error()
	}
	r.send(ev)
}

func (r *hubReporter) OnProgress(message string, current, total int) {
	r.send(event{Type: "progress", Message: message, Current: current, Total: total})
}

func (r *hubReporter) OnRunComplete(result *pipeline.Result) {
	r.send(event{
		Type:    "run_complete",
		Message: fmt.Sprintf("%d player rows, %d team rows", len(result.Players), len(result.Teams)),
	})
}

func (r *hubReporter) OnRunError(err error) {
	r.send(event{Type: "run_error", Error: err.Error()})
}
