// Package agentchat provides the core types shared by the session manager and the
// conversation client: the widget configuration, chat messages and the error taxonomy.
//
// Example usage:
//
//	transport := adk.NewClient()
//	manager := session.New(transport)
//	client := conversation.New(manager, transport)
//	if err := client.Initialize(ctx, cfg); err != nil {
//		return err
//	}
//	reply, err := client.SendMessage(ctx, "hello")
package agentchat

import "strings"

// DefaultAppName is the application namespace used when none is configured.
const DefaultAppName = "client_atention"

// WidgetConfig holds the settings a client needs to talk to the agent backend.
type WidgetConfig struct {
	APIURL   string // Base URL of the agent API server (e.g., "https://agents.example.com")
	AgentKey string // Opaque credential forwarded with every run request
	AppName  string // Logical application namespace on the backend
}

// Validate reports the first missing required field as a ConfigurationError.
func (c WidgetConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.APIURL) == "":
		return &ConfigurationError{Field: "api_url"}
	case strings.TrimSpace(c.AgentKey) == "":
		return &ConfigurationError{Field: "agent_key"}
	case strings.TrimSpace(c.AppName) == "":
		return &ConfigurationError{Field: "app_name"}
	}
	return nil
}

// Identity is the session identity used for every protocol call after initialization.
type Identity struct {
	AppName   string
	UserID    string
	SessionID string
}
