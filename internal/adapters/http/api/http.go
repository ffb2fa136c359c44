// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/silentsignal/vitals/internal/adapters/agent"
	"github.com/silentsignal/vitals/internal/adapters/http/swagger"
	"github.com/silentsignal/vitals/internal/adapters/repository"
	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/internal/domain/session"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ScanDependencies drives the scan lifecycle.
type ScanDependencies interface {
	StartScan(ctx context.Context) (session.Status, error)
	CancelScan(ctx context.Context) (session.Status, error)
	ScanStatus() (session.Status, bool)
}

// VitalsDependencies exposes the read side of the vitals state.
type VitalsDependencies interface {
	Vitals() model.ScoredReading
	History() []model.ScoredReading
	SOS() string
}

// ChatDependencies exposes the agent conversation.
type ChatDependencies interface {
	Chat(ctx context.Context, text string) (agent.Outcome, error)
	Conversation() []agent.Message
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScanDependencies
	VitalsDependencies
	ChatDependencies
	StatsProvider
}

// Replier answers agent chat requests locally.
type Replier interface {
	Reply(ctx context.Context, req agent.Request) agent.Response
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	scanHandler   *ScanHandler
	vitalsHandler *VitalsHandler
	chatHandler   *ChatHandler
	agentHandler  *AgentHandler
	logsHandler   *LogsHandler

	corsOrigins []string
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	store       repository.Store
	replier     Replier
	corsOrigins []string
}

// WithLogStore backs /api/logs and /api/history with store.
func WithLogStore(store repository.Store) ServerOption {
	return func(c *serverConfig) {
		c.store = store
	}
}

// WithReplier serves /api/agent/chat from r.
func WithReplier(r Replier) ServerOption {
	return func(c *serverConfig) {
		c.replier = r
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins ...string) ServerOption {
	return func(c *serverConfig) {
		c.corsOrigins = origins
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	var cfg serverConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	validate := validator.New()
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		scanHandler:   NewScanHandler(deps),
		vitalsHandler: NewVitalsHandler(deps),
		chatHandler:   NewChatHandler(deps, validate),
		agentHandler:  NewAgentHandler(cfg.replier, validate),
		logsHandler:   NewLogsHandler(cfg.store, validate),
		corsOrigins:   cfg.corsOrigins,
	}
}

// Router returns the routed handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(corsOptions(s.corsOrigins)))

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	swagger.Register(r)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", s.scanHandler.HandleStart)
		r.Get("/scan", s.scanHandler.HandleStatus)
		r.Delete("/scan", s.scanHandler.HandleCancel)

		r.Get("/vitals", s.vitalsHandler.HandleCurrent)
		r.Get("/vitals/history", s.vitalsHandler.HandleHistory)
		r.Get("/sos", s.vitalsHandler.HandleSOS)

		r.Post("/chat", s.chatHandler.HandleSend)
		r.Get("/chat", s.chatHandler.HandleConversation)
		r.Post("/agent/chat", s.agentHandler.HandleChat)

		r.Post("/logs", s.logsHandler.HandleAppend)
		r.Get("/history", s.logsHandler.HandleHistory)
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return false
	}
	return true
}
