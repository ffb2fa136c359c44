package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/logger"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// Default bridge configuration constants.
const (
	defaultTimeout   = 15 * time.Second
	defaultAgentName = "Agent"
	offlineAgentName = "System"

	// OfflineNotice is the reply recorded when the agent cannot be reached.
	OfflineNotice = "The wellness agent is offline right now. Please try again shortly."
)

// Player plays decoded agent audio.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// Bridge forwards user text with the current vitals to the agent and turns
// the reply into an Outcome. Every Send appends the user message and exactly
// one agent message.
type Bridge struct {
	client   Client
	log      *Conversation
	timeout  time.Duration
	player   Player
	onIntent func(Intent)
	now      func() time.Time
	logger   logger.Logger
}

// Option applies a configuration option to the Bridge.
type Option func(*Bridge)

// WithTimeout bounds each agent request.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithConversation shares an existing conversation log.
func WithConversation(c *Conversation) Option {
	return func(b *Bridge) {
		if c != nil {
			b.log = c
		}
	}
}

// WithPlayer sets the audio player used by Play.
func WithPlayer(p Player) Option {
	return func(b *Bridge) {
		b.player = p
	}
}

// WithIntentListener registers a callback for replies that carry an intent.
// It runs on the sending goroutine and must not block.
func WithIntentListener(fn func(Intent)) Option {
	return func(b *Bridge) {
		b.onIntent = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBridge creates a bridge that talks to the agent through client.
func NewBridge(client Client, opts ...Option) *Bridge {
	b := &Bridge{
		client:  client,
		log:     NewConversation(),
		timeout: defaultTimeout,
		now:     time.Now,
		logger:  logger.Get().Named("agent"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Conversation returns the log the bridge appends to.
func (b *Bridge) Conversation() *Conversation { return b.log }

// Send records text as a user message and asks the agent for a reply. Blank
// text returns ErrEmptyMessage and records nothing. Transport failures and
// malformed replies resolve to a KindOffline outcome, never to an error.
func (b *Bridge) Send(ctx context.Context, text string, vitals model.ScoredReading) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, ErrEmptyMessage
	}

	b.log.Append(Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: b.now(),
	})

	start := time.Now()
	resp, err := b.chat(ctx, Request{Message: text, Vitals: VitalsFrom(vitals)})
	if err == nil && strings.TrimSpace(resp.Response) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		out := b.offline()
		metrics.RecordAgentRequest(out.Kind.String(), float64(time.Since(start).Milliseconds()))
		metrics.RecordErrorByComponent("agent", "transport")
		b.logger.Warn(ctx, "agent unavailable", logger.Error(err))
		return out, nil
	}

	out := b.reply(ctx, resp)
	metrics.RecordAgentRequest(out.Kind.String(), float64(time.Since(start).Milliseconds()))
	if out.Kind == KindReplyWithIntent && b.onIntent != nil {
		b.onIntent(out.Intent)
	}
	return out, nil
}

// chat runs one request bounded by the bridge timeout. The deadline holds
// even for clients that ignore ctx; a reply arriving after it is discarded.
func (b *Bridge) chat(ctx context.Context, req Request) (Response, error) {
	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type answer struct {
		resp Response
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		resp, err := b.client.Chat(cctx, req)
		ch <- answer{resp: resp, err: err}
	}()

	select {
	case a := <-ch:
		return a.resp, a.err
	case <-cctx.Done():
		return Response{}, fmt.Errorf("%w: %w", ErrAgentTimeout, cctx.Err())
	}
}

// Play hands the outcome's audio to the configured player. Failures are
// logged and swallowed.
func (b *Bridge) Play(ctx context.Context, out Outcome) {
	if b.player == nil || !out.HasAudio() {
		return
	}
	if err := b.player.Play(ctx, out.Audio); err != nil {
		b.logger.Warn(ctx, "audio playback failed", logger.Error(err))
	}
}

func (b *Bridge) reply(ctx context.Context, resp Response) Outcome {
	name := strings.TrimSpace(resp.Agent)
	if name == "" {
		name = defaultAgentName
	}
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleAgent,
		Text:      resp.Response,
		AgentName: name,
		Timestamp: b.now(),
	}
	b.log.Append(msg)

	out := Outcome{Kind: KindReply, Message: msg}
	if intent := ParseIntent(resp.Action); intent != IntentNone {
		out.Kind = KindReplyWithIntent
		out.Intent = intent
	}
	if resp.Audio != "" {
		audio, err := decodeAudio(resp.Audio)
		if err != nil {
			b.logger.Warn(ctx, "dropping undecodable agent audio", logger.Error(err))
		} else {
			out.Audio = audio
		}
	}
	return out
}

func (b *Bridge) offline() Outcome {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleAgent,
		Text:      OfflineNotice,
		AgentName: offlineAgentName,
		Timestamp: b.now(),
	}
	b.log.Append(msg)
	return Outcome{Kind: KindOffline, Message: msg}
}

// decodeAudio accepts plain base64 or a data URI carrying base64.
func decodeAudio(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	audio, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return audio, nil
}
