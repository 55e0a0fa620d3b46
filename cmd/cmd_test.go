package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/longkey1/agentchat/internal/agentchat"
	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{input: "trace", want: zerolog.TraceLevel},
		{input: "DEBUG", want: zerolog.DebugLevel},
		{input: " info ", want: zerolog.InfoLevel},
		{input: "warning", want: zerolog.WarnLevel},
		{input: "error", want: zerolog.ErrorLevel},
		{input: "off", want: zerolog.Disabled},
		{input: "", want: zerolog.WarnLevel},
		{input: "verbose", want: zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty", token: "", want: ""},
		{name: "short", token: "abc", want: "********"},
		{name: "eight characters", token: "abcdefgh", want: "********"},
		{name: "long", token: "sk-1234567890abcd", want: "sk-1...abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskToken(tt.token); got != tt.want {
				t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestInteractiveSession(t *testing.T) {
	var sessions atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sessions") {
			n := sessions.Add(1)
			fmt.Fprintf(w, `{"id":"s%d","appName":"app","userId":"u%d"}`, n, n)
			return
		}
		_, _ = w.Write([]byte(`[{"content":{"role":"model","parts":[{"text":"pong"}]},"timestamp":1}]`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		APIURL:           srv.URL,
		AgentKey:         "k1",
		AppName:          "app",
		TranscriptDir:    t.TempDir(),
		TranscriptFormat: "json",
		SerializeSends:   true,
	}
	client, err := newConversation(cfg, "", nil)
	if err != nil {
		t.Fatalf("newConversation() error = %v", err)
	}
	if err := client.Initialize(context.Background(), cfg.WidgetConfig()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	var out, errOut bytes.Buffer
	repl := &interactiveSession{
		client: client,
		cfg:    cfg,
		in:     strings.NewReader("ping\n\n   \n/save\n/reset\nping again\n/exit\nnever sent\n"),
		out:    &out,
		errOut: &errOut,
	}
	if err := repl.run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := strings.Count(out.String(), "pong"); got != 2 {
		t.Errorf("replies printed = %d, want 2\n%s", got, out.String())
	}
	if !strings.Contains(errOut.String(), "Transcript saved") {
		t.Errorf("missing transcript confirmation in %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "New session: s2") {
		t.Errorf("missing reset confirmation in %q", errOut.String())
	}

	// /reset clears the history; only the exchange after it remains
	messages := client.Messages()
	if len(messages) != 2 {
		t.Fatalf("len(Messages()) = %d, want 2", len(messages))
	}
	if messages[0].Text != "ping again" || messages[1].Role != agentchat.RoleModel {
		t.Errorf("unexpected history %+v", messages)
	}

	store, err := newTranscriptStore(cfg)
	if err != nil {
		t.Fatalf("newTranscriptStore() error = %v", err)
	}
	saved, err := store.FindByPrefix("latest")
	if err != nil {
		t.Fatalf("FindByPrefix() error = %v", err)
	}
	if saved.SessionID != "s1" || saved.MessageCount() != 2 {
		t.Errorf("saved transcript = %+v", saved)
	}
}
