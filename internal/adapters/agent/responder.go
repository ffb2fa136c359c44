package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/silentsignal/vitals/pkg/logger"
)

// Agent names and replies used by the local responder.
const (
	behavioralAgent = "Behavioral Agent"
	schedulerAgent  = "Scheduler Agent"
	generativeAgent = "Health Mind"

	expertsReply = "I've connected to the Expert Nodes. An expert has an opening tomorrow."

	// OfflineModeNotice is returned when no generator can answer.
	OfflineModeNotice = "I am operating in offline mode. Please ask about 'scans' or 'doctors'."
)

// Keyword sets for the deterministic layer. Matching is by substring on the
// lowercased message.
//
//nolint:gochecknoglobals // static keyword tables
var (
	pacerKeywords   = []string{"scan", "measure", "pacer", "heart", "pulse"}
	expertsKeywords = []string{"doctor", "psychiatrist", "appointment", "booking"}
)

// Generator produces free-form text for messages the keyword layer does not
// handle.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Responder answers agent chat requests locally. Keywords map to fixed
// replies with intents; everything else goes to the generator, if any.
type Responder struct {
	generator Generator
	logger    logger.Logger
}

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithGenerator sets the generative fallback.
func WithGenerator(g Generator) ResponderOption {
	return func(r *Responder) {
		r.generator = g
	}
}

// WithResponderLogger sets a custom logger.
func WithResponderLogger(l logger.Logger) ResponderOption {
	return func(r *Responder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResponder creates a responder.
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{logger: logger.Get().Named("responder")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Chat lets a Responder stand in for a remote agent.
func (r *Responder) Chat(ctx context.Context, req Request) (Response, error) {
	return r.Reply(ctx, req), nil
}

// Reply answers req. It never fails: generator errors become the offline-mode
// notice from the System agent.
func (r *Responder) Reply(ctx context.Context, req Request) Response {
	msg := strings.ToLower(req.Message)

	if containsAny(msg, pacerKeywords) {
		return Response{
			Agent: behavioralAgent,
			Response: fmt.Sprintf("I'm activating the Relief Pacer. Your anxiety is %d%%. Align your face with the camera.",
				req.Vitals.AnxietyScore),
			Action: string(IntentTriggerPacer),
		}
	}
	if containsAny(msg, expertsKeywords) {
		return Response{
			Agent:    schedulerAgent,
			Response: expertsReply,
			Action:   string(IntentOpenExperts),
		}
	}

	if r.generator != nil {
		text, err := r.generator.Generate(ctx, prompt(req))
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrGeneratorEmpty
		}
		if err == nil {
			return Response{Agent: generativeAgent, Response: strings.TrimSpace(text), Action: "none"}
		}
		r.logger.Warn(ctx, "generator failed", logger.Error(err))
	}

	return Response{Agent: offlineAgentName, Response: OfflineModeNotice, Action: "none"}
}

func prompt(req Request) string {
	return fmt.Sprintf("You are Silent Signal, an empathetic health assistant.\n"+
		"User vitals: heart rate %d BPM, breathing rate %d/min, anxiety %d%% (%s).\n"+
		"User question: %s\n"+
		"Keep the answer brief, clinical, and supportive.",
		req.Vitals.HeartRate, req.Vitals.BreathRate, req.Vitals.AnxietyScore, req.Vitals.Status, req.Message)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
