package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/silentsignal/vitals/internal/adapters/agent"
)

// ChatHandler handles conversation requests.
type ChatHandler struct {
	deps     ChatDependencies
	validate *validator.Validate
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(deps ChatDependencies, validate *validator.Validate) *ChatHandler {
	return &ChatHandler{deps: deps, validate: validate}
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// HandleSend handles POST /api/chat. Agent outages still answer 200 with an
// offline outcome.
func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	out, err := h.deps.Chat(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleConversation handles GET /api/chat.
func (h *ChatHandler) HandleConversation(w http.ResponseWriter, _ *http.Request) {
	msgs := h.deps.Conversation()
	if msgs == nil {
		msgs = []agent.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// AgentHandler serves the local agent endpoint.
type AgentHandler struct {
	replier  Replier
	validate *validator.Validate
}

// NewAgentHandler creates a new agent handler. A nil replier answers 503.
func NewAgentHandler(replier Replier, validate *validator.Validate) *AgentHandler {
	return &AgentHandler{replier: replier, validate: validate}
}

// HandleChat handles POST /api/agent/chat.
func (h *AgentHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if h.replier == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrResponderAbsent)
		return
	}
	var req agent.Request
	if !decode(w, r, h.validate, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.replier.Reply(r.Context(), req))
}
