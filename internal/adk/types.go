package adk

import "encoding/json"

// Session represents the session record returned by the session creation endpoint
type Session struct {
	ID             string            `json:"id"`
	AppName        string            `json:"appName"`
	UserID         string            `json:"userId"`
	State          map[string]any    `json:"state,omitempty"`
	Events         []json.RawMessage `json:"events,omitempty"`
	LastUpdateTime float64           `json:"lastUpdateTime"` // Epoch seconds
}

// RunRequest represents the request body for the /run endpoint
type RunRequest struct {
	AppName    string      `json:"appName"`
	UserID     string      `json:"userId"`
	SessionID  string      `json:"sessionId"`
	NewMessage Content     `json:"newMessage"`
	StateDelta *StateDelta `json:"stateDelta,omitempty"`
}

// StateDelta carries session state updates applied by the backend before the run.
// Keys are backend state keys, hence snake_case.
type StateDelta struct {
	AgentKey     string `json:"agent_key,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Knowledge    string `json:"knowledge,omitempty"`
	RagCorpus    string `json:"rag_corpus,omitempty"`
}

// Content represents a role-tagged list of parts
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// Part represents a part of the content. Text is nil when the part carries no text.
type Part struct {
	Text *string `json:"text,omitempty"`
}

// TextPart returns a part holding the given text.
func TextPart(text string) Part {
	return Part{Text: &text}
}

// Event represents a single agent-turn record in a /run response.
// Only Content is interpreted by the client; the remaining fields are kept for logging
// and are opaque.
type Event struct {
	Content           *Content        `json:"content,omitempty"`
	FinishReason      string          `json:"finishReason,omitempty"`
	Timestamp         float64         `json:"timestamp"` // Epoch seconds
	InvocationID      string          `json:"invocationId,omitempty"`
	Author            string          `json:"author,omitempty"`
	ID                string          `json:"id,omitempty"`
	AvgLogprobs       *float64        `json:"avgLogprobs,omitempty"`
	GroundingMetadata json.RawMessage `json:"groundingMetadata,omitempty"`
	UsageMetadata     json.RawMessage `json:"usageMetadata,omitempty"`
	Actions           json.RawMessage `json:"actions,omitempty"`
}

// FirstContent returns the first event carrying content, or nil if there is none.
func FirstContent(events []Event) *Event {
	for i := range events {
		if events[i].Content != nil {
			return &events[i]
		}
	}
	return nil
}

// FirstText returns the text of the first part with non-empty text.
// The second return value is false when no such part exists.
func (c *Content) FirstText() (string, bool) {
	for _, part := range c.Parts {
		if part.Text != nil && *part.Text != "" {
			return *part.Text, true
		}
	}
	return "", false
}
