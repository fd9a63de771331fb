package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openvehiclelab/elmlink/pid"
	"github.com/openvehiclelab/elmlink/reader"
)

// Server handles incoming HTTP requests for interacting with the
// configured adapter instance
type Server struct {
	Logger *slog.Logger
	Reader *reader.Reader
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /request", s.handleRequest)
	mux.HandleFunc("GET /pollers", s.handleListPollers)
	mux.HandleFunc("POST /pollers", s.handleAddPoller)
	mux.HandleFunc("DELETE /pollers/{name}", s.handleRemovePoller)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

// statusFor maps reader errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, pid.ErrUnknownPID):
		return http.StatusNotFound
	case errors.Is(err, reader.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, reader.ErrQueueOverflow):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleHealth reports whether the adapter connection is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type HealthResponse struct {
		Connected bool   `json:"connected"`
		Protocol  string `json:"protocol"`
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Connected: s.Reader.IsConnected(),
		Protocol:  s.Reader.GetProtocol(),
	})
}

// handleRequest queues a one-shot sensor request by name
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	type SensorRequest struct {
		Name string `json:"name"`
	}

	var req SensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		s.sendError(w, "'name' field is required", http.StatusBadRequest)
		return
	}

	if err := s.Reader.RequestValueByName(req.Name); err != nil {
		s.Logger.Error("Failed to queue request", "error", err, "name", req.Name)
		s.sendError(w, err.Error(), statusFor(err))
		return
	}

	s.Logger.Info("Sensor request queued", "name", req.Name)
	w.WriteHeader(http.StatusAccepted)
}

// handleListPollers returns the active poll command set
func (s *Server) handleListPollers(w http.ResponseWriter, r *http.Request) {
	type PollersResponse struct {
		Commands []string `json:"commands"`
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PollersResponse{Commands: s.Reader.Pollers()})
}

// handleAddPoller adds a sensor to the active poll set
func (s *Server) handleAddPoller(w http.ResponseWriter, r *http.Request) {
	type PollerRequest struct {
		Name string `json:"name"`
	}

	var req PollerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		s.sendError(w, "'name' field is required", http.StatusBadRequest)
		return
	}

	if err := s.Reader.AddPoller(req.Name); err != nil {
		s.sendError(w, err.Error(), statusFor(err))
		return
	}

	s.Logger.Info("Poller added", "name", req.Name)
	w.WriteHeader(http.StatusCreated)
}

// handleRemovePoller removes a sensor from the active poll set
func (s *Server) handleRemovePoller(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.Reader.RemovePoller(name); err != nil {
		s.sendError(w, err.Error(), statusFor(err))
		return
	}

	s.Logger.Info("Poller removed", "name", name)
	w.WriteHeader(http.StatusNoContent)
}
