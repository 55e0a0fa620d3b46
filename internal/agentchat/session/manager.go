// Package session holds the backend session identity used by a conversation.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/longkey1/agentchat/internal/adk"
	"github.com/longkey1/agentchat/internal/agentchat"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of a conversation
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Sending
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Sending:
		return "sending"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Transport creates sessions on the backend
type Transport interface {
	CreateSession(ctx context.Context, baseURL, appName, userID string) (*adk.Session, error)
}

// Manager owns the single session identity of a client.
// Construct one per conversation and pass it to the components that need it.
type Manager struct {
	transport  Transport
	logger     zerolog.Logger
	generateID func() string

	// initMu serializes Initialize and Reset so concurrent callers cause a single session creation.
	initMu sync.Mutex

	mu        sync.RWMutex
	config    *agentchat.WidgetConfig
	userID    string
	sessionID string
	state     State
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithUserIDGenerator replaces the client-side user id generator
func WithUserIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.generateID = fn
	}
}

// New creates a new Manager
func New(transport Transport, opts ...Option) *Manager {
	m := &Manager{
		transport:  transport,
		logger:     log.Logger,
		generateID: NewUserID,
		state:      Uninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewUserID returns a random client-side user id (e.g., "user-550e8400-e29b-41d4-a716-446655440000")
func NewUserID() string {
	return "user-" + uuid.NewString()
}

// Initialize stores the config and creates a backend session.
// Calling it again after success is a no-op.
func (m *Manager) Initialize(ctx context.Context, cfg agentchat.WidgetConfig) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()
	return m.initialize(ctx, cfg)
}

func (m *Manager) initialize(ctx context.Context, cfg agentchat.WidgetConfig) error {
	if m.Initialized() {
		m.logger.Warn().Msg("Session manager is already initialized")
		return nil
	}

	if err := cfg.Validate(); err != nil {
		m.logger.Error().Err(err).Msg("Invalid widget configuration")
		return err
	}

	m.mu.Lock()
	m.config = &cfg
	m.userID = m.generateID()
	m.sessionID = ""
	m.state = Initializing
	m.mu.Unlock()

	if err := m.createSession(ctx); err != nil {
		m.mu.Lock()
		m.state = Error
		m.mu.Unlock()
		m.logger.Error().Err(err).Msg("Failed to initialize session manager")
		return err
	}

	m.mu.Lock()
	m.state = Ready
	userID, sessionID := m.userID, m.sessionID
	m.mu.Unlock()

	m.logger.Info().
		Str("user_id", userID).
		Str("session_id", sessionID).
		Msg("Session manager initialized")
	return nil
}

// createSession asks the backend for a new session and adopts its identity
func (m *Manager) createSession(ctx context.Context) error {
	m.mu.RLock()
	cfg := *m.config
	userID := m.userID
	m.mu.RUnlock()

	sess, err := m.transport.CreateSession(ctx, cfg.APIURL, cfg.AppName, userID)
	if err != nil {
		var httpErr *adk.HTTPError
		var decodeErr *adk.DecodeError
		switch {
		case errors.As(err, &httpErr):
			return &agentchat.SessionCreationError{StatusCode: httpErr.StatusCode, StatusText: httpErr.StatusText}
		case errors.As(err, &decodeErr):
			return &agentchat.MalformedResponseError{Reason: "invalid session body", Err: decodeErr.Err}
		default:
			return &agentchat.NetworkError{Op: "create session", Err: err}
		}
	}
	if sess.ID == "" {
		return &agentchat.MalformedResponseError{Reason: "session id is missing"}
	}

	m.mu.Lock()
	m.sessionID = sess.ID
	// The server-assigned user id is authoritative
	if sess.UserID != "" {
		m.userID = sess.UserID
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("session_id", sess.ID).
		Str("user_id", sess.UserID).
		Str("app_name", sess.AppName).
		Msg("Session created")
	return nil
}

// Reset clears the session identity and initializes again with the stored config, if any
func (m *Manager) Reset(ctx context.Context) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	m.mu.Lock()
	cfg := m.config
	m.userID = ""
	m.sessionID = ""
	m.state = Uninitialized
	m.mu.Unlock()

	m.logger.Info().Msg("Session manager reset")

	if cfg == nil {
		return nil
	}
	return m.initialize(ctx, *cfg)
}

// Initialized reports whether a session has been created successfully
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == Ready
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns the current session identity
func (m *Manager) Identity() (agentchat.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != Ready || m.config == nil || m.sessionID == "" || m.userID == "" {
		return agentchat.Identity{}, &agentchat.NotInitializedError{}
	}
	return agentchat.Identity{
		AppName:   m.config.AppName,
		UserID:    m.userID,
		SessionID: m.sessionID,
	}, nil
}

// Config returns the stored config. The second return value is false before the first Initialize.
func (m *Manager) Config() (agentchat.WidgetConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return agentchat.WidgetConfig{}, false
	}
	return *m.config, true
}
