package agentchat

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned when a required configuration field is missing
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is required", e.Field)
}

// SessionCreationError is returned when the backend rejects session creation
type SessionCreationError struct {
	StatusCode int
	StatusText string
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("session creation failed: %s", statusLine(e.StatusCode, e.StatusText))
}

// NotInitializedError is returned when a protocol call is made before initialization succeeded
type NotInitializedError struct{}

func (e *NotInitializedError) Error() string {
	return "client is not initialized"
}

// SendMessageError is returned when the backend rejects a run request
type SendMessageError struct {
	StatusCode int
	StatusText string
}

func (e *SendMessageError) Error() string {
	return fmt.Sprintf("send message failed: %s", statusLine(e.StatusCode, e.StatusText))
}

// MalformedResponseError is returned when a successful response does not have the expected shape
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// NetworkError represents a transport-level failure where no HTTP status is available
type NetworkError struct {
	Op  string // "create session", "run"
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error [%s]: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func statusLine(code int, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Sprintf("HTTP %d", code)
	}
	return fmt.Sprintf("HTTP %d %s", code, text)
}
