// Package transcript exports conversation histories to disk for later review.
// Transcripts are write-once records; they are never used to resume a backend session.
package transcript

import (
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/agentchat/internal/agentchat"
)

// Transcript represents an exported conversation
type Transcript struct {
	ID        string              `json:"id" yaml:"id"`                 // UUID v4
	Name      string              `json:"name" yaml:"name"`             // Optional name (empty by default)
	AppName   string              `json:"app_name" yaml:"app_name"`     // Backend application namespace
	UserID    string              `json:"user_id" yaml:"user_id"`       // Server-assigned user id
	SessionID string              `json:"session_id" yaml:"session_id"` // Backend session id
	CreatedAt time.Time           `json:"created_at" yaml:"created_at"`
	Messages  []agentchat.Message `json:"messages" yaml:"messages"`
}

// New creates a transcript of the given history
func New(identity agentchat.Identity, messages []agentchat.Message) *Transcript {
	if messages == nil {
		messages = []agentchat.Message{}
	}
	return &Transcript{
		ID:        uuid.New().String(),
		AppName:   identity.AppName,
		UserID:    identity.UserID,
		SessionID: identity.SessionID,
		CreatedAt: time.Now(),
		Messages:  messages,
	}
}

// GetShortID returns the shortened transcript ID (first 8 characters)
func (t *Transcript) GetShortID() string {
	if len(t.ID) >= 8 {
		return t.ID[:8]
	}
	return t.ID
}

// GetDisplayName returns the name if set, otherwise the short ID
func (t *Transcript) GetDisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.GetShortID()
}

// MessageCount returns the number of messages in the transcript
func (t *Transcript) MessageCount() int {
	return len(t.Messages)
}
