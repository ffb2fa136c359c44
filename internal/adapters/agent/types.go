// Package agent brokers conversations with the external wellness agent.
//
// The Bridge keeps an ordered conversation log and resolves every send to a
// reply or an offline notice. The Responder is the local agent endpoint that
// answers those requests.
package agent

import (
	"time"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message is one conversation entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	AgentName string    `json:"agent_name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Intent is a navigation request carried by an agent reply.
type Intent string

// Recognized intents. IntentNone means the reply carries no action.
const (
	IntentNone         Intent = ""
	IntentTriggerPacer Intent = "trigger_pacer"
	IntentOpenExperts  Intent = "open_experts"
)

// ParseIntent maps a wire action to an Intent. Unknown actions, including
// the literal "none", yield IntentNone.
func ParseIntent(action string) Intent {
	switch Intent(action) {
	case IntentTriggerPacer, IntentOpenExperts:
		return Intent(action)
	default:
		return IntentNone
	}
}

// Kind tags an Outcome.
type Kind int

// Outcome kinds.
const (
	KindReply Kind = iota
	KindReplyWithIntent
	KindOffline
)

func (k Kind) String() string {
	switch k {
	case KindReply:
		return "reply"
	case KindReplyWithIntent:
		return "reply_with_intent"
	case KindOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the resolution of one Send. Intent is set only for
// KindReplyWithIntent; Audio is nil unless the agent sent decodable audio.
type Outcome struct {
	Kind    Kind    `json:"kind"`
	Message Message `json:"message"`
	Intent  Intent  `json:"intent,omitempty"`
	Audio   []byte  `json:"-"`
}

// HasAudio reports whether the outcome carries playable audio.
func (o Outcome) HasAudio() bool { return len(o.Audio) > 0 }

// Vitals is the wire form of the current reading sent with each message.
type Vitals struct {
	HeartRate    int          `json:"heart_rate"`
	BreathRate   int          `json:"breath_rate"`
	AnxietyScore int          `json:"anxiety_score"`
	Status       model.Status `json:"status"`
}

// VitalsFrom converts a reading to its wire form. The pending sentinel
// travels as zero rates with status Pending.
func VitalsFrom(r model.ScoredReading) Vitals {
	status := r.Status
	if r.IsPending() {
		status = model.StatusPending
	}
	return Vitals{
		HeartRate:    r.Sample.HeartRate,
		BreathRate:   r.Sample.BreathRate,
		AnxietyScore: r.AnxietyScore,
		Status:       status,
	}
}

// Request is the agent chat request body.
type Request struct {
	Message string `json:"message" validate:"required"`
	Vitals  Vitals `json:"vitals"`
}

// Response is the agent chat response body.
type Response struct {
	Response string `json:"response"`
	Agent    string `json:"agent,omitempty"`
	Action   string `json:"action,omitempty"`
	Audio    string `json:"audio,omitempty"`
}
