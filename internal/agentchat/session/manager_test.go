package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/longkey1/agentchat/internal/adk"
	"github.com/longkey1/agentchat/internal/agentchat"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionBackend fakes the session creation endpoint and records the user ids it receives
type sessionBackend struct {
	mu      sync.Mutex
	userIDs []string
	status  int
	body    string
}

func (b *sessionBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// /apps/{app}/users/{user}/sessions
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	b.mu.Lock()
	if len(parts) == 5 {
		b.userIDs = append(b.userIDs, parts[3])
	}
	status, body := b.status, b.body
	calls := len(b.userIDs)
	b.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	if body == "" {
		body = fmt.Sprintf(`{"id":"s%d","appName":"app","userId":"u%d","state":{},"events":[],"lastUpdateTime":0}`, calls, calls)
	}
	_, _ = w.Write([]byte(body))
}

func (b *sessionBackend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.userIDs...)
}

func newTestManager(t *testing.T, backend *sessionBackend, opts ...Option) (*Manager, agentchat.WidgetConfig) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	m := New(adk.NewClient(adk.WithLogger(zerolog.Nop())), opts...)
	return m, agentchat.WidgetConfig{APIURL: srv.URL, AgentKey: "k1", AppName: "app"}
}

func TestInitializeAdoptsServerIdentity(t *testing.T) {
	backend := &sessionBackend{}
	m, cfg := newTestManager(t, backend)

	assert.False(t, m.Initialized())
	assert.Equal(t, Uninitialized, m.State())

	require.NoError(t, m.Initialize(context.Background(), cfg))

	assert.True(t, m.Initialized())
	assert.Equal(t, Ready, m.State())

	identity, err := m.Identity()
	require.NoError(t, err)
	assert.Equal(t, agentchat.Identity{AppName: "app", UserID: "u1", SessionID: "s1"}, identity)

	// The client-generated id was sent, the server id won
	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0], "user-"))
}

func TestInitializeIsIdempotent(t *testing.T) {
	backend := &sessionBackend{}
	m, cfg := newTestManager(t, backend)

	require.NoError(t, m.Initialize(context.Background(), cfg))
	require.NoError(t, m.Initialize(context.Background(), cfg))

	assert.Len(t, backend.calls(), 1)
}

func TestConcurrentInitializeCreatesOneSession(t *testing.T) {
	backend := &sessionBackend{}
	m, cfg := newTestManager(t, backend)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Initialize(context.Background(), cfg))
		}()
	}
	wg.Wait()

	assert.Len(t, backend.calls(), 1)
}

func TestInitializeKeepsGeneratedUserIDWhenServerOmitsIt(t *testing.T) {
	backend := &sessionBackend{body: `{"id":"s9","appName":"app"}`}
	m, cfg := newTestManager(t, backend, WithUserIDGenerator(func() string { return "user-fixed" }))

	require.NoError(t, m.Initialize(context.Background(), cfg))

	identity, err := m.Identity()
	require.NoError(t, err)
	assert.Equal(t, "user-fixed", identity.UserID)
	assert.Equal(t, "s9", identity.SessionID)
}

func TestInitializeSessionCreationError(t *testing.T) {
	backend := &sessionBackend{status: http.StatusServiceUnavailable}
	m, cfg := newTestManager(t, backend)

	err := m.Initialize(context.Background(), cfg)

	var creationErr *agentchat.SessionCreationError
	require.True(t, errors.As(err, &creationErr))
	assert.Equal(t, http.StatusServiceUnavailable, creationErr.StatusCode)
	assert.Equal(t, "Service Unavailable", creationErr.StatusText)

	assert.False(t, m.Initialized())
	assert.Equal(t, Error, m.State())
	assert.Len(t, backend.calls(), 1, "no retry")

	_, err = m.Identity()
	var notInit *agentchat.NotInitializedError
	assert.True(t, errors.As(err, &notInit))

	// The config is kept so Reset can recover
	stored, ok := m.Config()
	assert.True(t, ok)
	assert.Equal(t, cfg, stored)
}

func TestInitializeMalformedSession(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `oops`},
		{name: "missing id", body: `{"userId":"u1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cfg := newTestManager(t, &sessionBackend{body: tt.body})

			err := m.Initialize(context.Background(), cfg)

			var malformed *agentchat.MalformedResponseError
			assert.True(t, errors.As(err, &malformed))
			assert.Equal(t, Error, m.State())
		})
	}
}

func TestInitializeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := New(adk.NewClient(adk.WithLogger(zerolog.Nop())), WithLogger(zerolog.Nop()))
	err := m.Initialize(context.Background(), agentchat.WidgetConfig{APIURL: url, AgentKey: "k", AppName: "app"})

	var netErr *agentchat.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "create session", netErr.Op)
}

func TestInitializeConfigurationError(t *testing.T) {
	backend := &sessionBackend{}
	m, cfg := newTestManager(t, backend)
	cfg.AgentKey = ""

	err := m.Initialize(context.Background(), cfg)

	var cfgErr *agentchat.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "agent_key", cfgErr.Field)
	assert.Empty(t, backend.calls())
	assert.Equal(t, Uninitialized, m.State())
}

func TestResetCreatesNewSession(t *testing.T) {
	backend := &sessionBackend{}
	var generated int32
	gen := func() string {
		return fmt.Sprintf("user-%d", atomic.AddInt32(&generated, 1))
	}
	m, cfg := newTestManager(t, backend, WithUserIDGenerator(gen))

	require.NoError(t, m.Initialize(context.Background(), cfg))
	require.NoError(t, m.Reset(context.Background()))

	assert.True(t, m.Initialized())
	assert.Equal(t, []string{"user-1", "user-2"}, backend.calls())

	identity, err := m.Identity()
	require.NoError(t, err)
	assert.Equal(t, "s2", identity.SessionID)
	assert.Equal(t, "u2", identity.UserID)
}

func TestResetRecoversFromError(t *testing.T) {
	backend := &sessionBackend{status: http.StatusInternalServerError}
	m, cfg := newTestManager(t, backend)

	require.Error(t, m.Initialize(context.Background(), cfg))
	assert.Equal(t, Error, m.State())

	backend.mu.Lock()
	backend.status = http.StatusOK
	backend.mu.Unlock()

	require.NoError(t, m.Reset(context.Background()))
	assert.Equal(t, Ready, m.State())
}

func TestResetWithoutConfig(t *testing.T) {
	m := New(adk.NewClient(), WithLogger(zerolog.Nop()))

	require.NoError(t, m.Reset(context.Background()))
	assert.False(t, m.Initialized())
	assert.Equal(t, Uninitialized, m.State())
}

func TestNewUserID(t *testing.T) {
	a, b := NewUserID(), NewUserID()

	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^user-[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, a)
}
