package agentchat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message represents a single message in the conversation history
type Message struct {
	Role      Role   `json:"role" yaml:"role"`           // "user" or "model"
	Text      string `json:"text" yaml:"text"`           // Message text
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // Epoch milliseconds
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}
