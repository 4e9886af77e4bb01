package ingress

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/traffic"
)

const (
	maxBodyBytes   = 1 << 20
	failureDetail  = "failed to handle event"
	welcomeMessage = "Welcome to the Mesh Visualizer API!"
)

// Engine is what the ingress needs from the event engine.
type Engine interface {
	Ingest(ctx context.Context, in events.Input) (events.Output, error)
	Snapshot(ctx context.Context) events.UpdateGraphOutput
	InFlight() []traffic.Flight
}

// Server serves the ingress routes.
type Server struct {
	engine  Engine
	decoder *events.Decoder
	logger  *slog.Logger
}

// New creates a Server. ctx supplies the logger.
func New(ctx context.Context, engine Engine) *Server {
	return &Server{
		engine:  engine,
		decoder: events.NewDecoder(time.Now),
		logger:  ctxlog.FromContext(ctx),
	}
}

// Register adds the ingress routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /events", s.handleEvent)
	mux.HandleFunc("GET /graph", s.handleGraph)
	mux.HandleFunc("GET /packets", s.handlePackets)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := ctxlog.WithLogger(r.Context(), s.logger.With("remote_addr", r.RemoteAddr))
	logger := ctxlog.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Debug("Failed to read event body.", "error", err)
		s.fail(w)
		return
	}

	in, err := s.decoder.Decode(body)
	if err != nil {
		logger.Info("Rejected malformed event.", "error", err)
		s.fail(w)
		return
	}

	out, err := s.engine.Ingest(ctx, in)
	if err != nil {
		logger.Info("Rejected event.", "error", err)
		s.fail(w)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handlePackets(w http.ResponseWriter, _ *http.Request) {
	flights := s.engine.InFlight()
	if flights == nil {
		flights = []traffic.Flight{}
	}
	s.writeJSON(w, http.StatusOK, flights)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (s *Server) fail(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"detail": failureDetail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response.", "error", err)
	}
}
