// Package conversation executes the send/receive protocol against the agent backend and
// keeps the authoritative message history of a conversation.
package conversation

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/longkey1/agentchat/internal/adk"
	"github.com/longkey1/agentchat/internal/agentchat"
	"github.com/longkey1/agentchat/internal/agentchat/profile"
	"github.com/longkey1/agentchat/internal/agentchat/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Transport runs agent turns on the backend
type Transport interface {
	Run(ctx context.Context, baseURL string, req *adk.RunRequest) ([]adk.Event, error)
}

// SessionManager provides the session identity used by the client
type SessionManager interface {
	Initialize(ctx context.Context, cfg agentchat.WidgetConfig) error
	Reset(ctx context.Context) error
	Initialized() bool
	State() session.State
	Identity() (agentchat.Identity, error)
	Config() (agentchat.WidgetConfig, bool)
}

// Client sends messages to the agent and owns the message history.
type Client struct {
	sessions  SessionManager
	transport Transport
	logger    zerolog.Logger
	now       func() time.Time
	profile   *profile.Profile
	serialize bool

	sendMu sync.Mutex // held for the whole send when serialize is set

	mu       sync.Mutex
	messages []agentchat.Message
	inFlight int
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock replaces the clock used for user message timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithProfile adds the profile's instructions, knowledge and RAG corpus to every run request
func WithProfile(p *profile.Profile) Option {
	return func(c *Client) {
		c.profile = p
	}
}

// WithSerializedSends queues overlapping SendMessage calls so that they run one at a time
// in call order.
func WithSerializedSends(enabled bool) Option {
	return func(c *Client) {
		c.serialize = enabled
	}
}

// New creates a new Client
func New(sessions SessionManager, transport Transport, opts ...Option) *Client {
	c := &Client{
		sessions:  sessions,
		transport: transport,
		logger:    log.Logger,
		now:       time.Now,
		messages:  []agentchat.Message{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize creates the backend session. It is a no-op once initialized.
func (c *Client) Initialize(ctx context.Context, cfg agentchat.WidgetConfig) error {
	return c.sessions.Initialize(ctx, cfg)
}

// Initialized reports whether the client can send messages
func (c *Client) Initialized() bool {
	return c.sessions.Initialized()
}

// Identity returns the current session identity
func (c *Client) Identity() (agentchat.Identity, error) {
	return c.sessions.Identity()
}

// State returns the conversation lifecycle state
func (c *Client) State() session.State {
	c.mu.Lock()
	sending := c.inFlight > 0
	c.mu.Unlock()
	if sending {
		return session.Sending
	}
	return c.sessions.State()
}

// SendMessage sends text to the agent and returns the agent's reply.
//
// The user message is appended to the history before the request is made and stays there
// when the request fails. Text is sent as is; trimming and empty checks belong to the caller.
//
// Unless WithSerializedSends is set, callers must not issue a new send before the previous
// one returns: overlapping sends append their replies in completion order, which can differ
// from send order.
func (c *Client) SendMessage(ctx context.Context, text string) (agentchat.Message, error) {
	identity, err := c.sessions.Identity()
	if err != nil {
		c.logger.Error().Err(err).Msg("Cannot send message")
		return agentchat.Message{}, err
	}
	cfg, ok := c.sessions.Config()
	if !ok {
		err := &agentchat.NotInitializedError{}
		c.logger.Error().Err(err).Msg("Cannot send message")
		return agentchat.Message{}, err
	}

	if c.serialize {
		c.sendMu.Lock()
		defer c.sendMu.Unlock()
	}

	c.mu.Lock()
	c.inFlight++
	c.messages = append(c.messages, agentchat.Message{
		Role:      agentchat.RoleUser,
		Text:      text,
		Timestamp: c.now().UnixMilli(),
	})
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	req := c.buildRequest(identity, cfg.AgentKey, text)
	events, err := c.transport.Run(ctx, cfg.APIURL, req)
	if err != nil {
		err = translateRunError(err)
		c.logger.Error().Err(err).Str("session_id", identity.SessionID).Msg("Failed to send message")
		return agentchat.Message{}, err
	}

	reply, err := extractReply(events)
	if err != nil {
		c.logger.Error().Err(err).Str("session_id", identity.SessionID).Int("events", len(events)).Msg("Failed to read agent response")
		return agentchat.Message{}, err
	}

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	count := len(c.messages)
	c.mu.Unlock()

	c.logger.Info().
		Str("session_id", identity.SessionID).
		Int("events", len(events)).
		Int("reply_length", len(reply.Text)).
		Int("messages", count).
		Msg("Agent replied")
	return reply, nil
}

// buildRequest creates the run request for a new user message
func (c *Client) buildRequest(identity agentchat.Identity, agentKey, text string) *adk.RunRequest {
	delta := &adk.StateDelta{AgentKey: agentKey}
	if c.profile != nil {
		delta.Instructions = c.profile.Instructions
		delta.Knowledge = c.profile.Knowledge
		delta.RagCorpus = c.profile.RagCorpus
	}
	return &adk.RunRequest{
		AppName:   identity.AppName,
		UserID:    identity.UserID,
		SessionID: identity.SessionID,
		NewMessage: adk.Content{
			Role:  string(agentchat.RoleUser),
			Parts: []adk.Part{adk.TextPart(text)},
		},
		StateDelta: delta,
	}
}

// extractReply builds the model message from the first event that carries content.
// A content without any text yields an empty reply rather than an error.
func extractReply(events []adk.Event) (agentchat.Message, error) {
	event := adk.FirstContent(events)
	if event == nil {
		return agentchat.Message{}, &agentchat.MalformedResponseError{Reason: "no response content found"}
	}
	if event.Content.Parts == nil {
		return agentchat.Message{}, &agentchat.MalformedResponseError{Reason: "no response parts found"}
	}
	text, _ := event.Content.FirstText()
	return agentchat.Message{
		Role:      agentchat.RoleModel,
		Text:      text,
		Timestamp: int64(math.Round(event.Timestamp * 1000)),
	}, nil
}

func translateRunError(err error) error {
	var httpErr *adk.HTTPError
	var decodeErr *adk.DecodeError
	switch {
	case errors.As(err, &httpErr):
		return &agentchat.SendMessageError{StatusCode: httpErr.StatusCode, StatusText: httpErr.StatusText}
	case errors.As(err, &decodeErr):
		return &agentchat.MalformedResponseError{Reason: "invalid response body", Err: decodeErr.Err}
	default:
		return &agentchat.NetworkError{Op: "run", Err: err}
	}
}

// Messages returns a copy of the message history in conversation order
func (c *Client) Messages() []agentchat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := make([]agentchat.Message, len(c.messages))
	copy(messages, c.messages)
	return messages
}

// ClearMessages empties the history without touching the session
func (c *Client) ClearMessages() {
	c.mu.Lock()
	c.messages = []agentchat.Message{}
	c.mu.Unlock()
	c.logger.Debug().Msg("Message history cleared")
}

// Reset clears the history and starts a new backend session
func (c *Client) Reset(ctx context.Context) error {
	c.ClearMessages()
	return c.sessions.Reset(ctx)
}
