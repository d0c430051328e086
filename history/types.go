package history

import (
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind tells the presentation layer how to render a message body
type Kind string

const (
	KindText       Kind = "text"
	KindStructured Kind = "structured"
)

// Session represents one conversation thread
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	LastActivity time.Time `json:"timestamp"`
}

// Message represents a conversation message
type Message struct {
	ID            string    `json:"id"`
	Role          Role      `json:"role"`
	Content       string    `json:"content"`
	AttachmentRef string    `json:"imageUrl,omitempty"`
	Kind          Kind      `json:"messageType"`
	CreatedAt     time.Time `json:"timestamp"`
}

// SessionInfo provides summary information for session listing
type SessionInfo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     int       `json:"messages"`
	LastActivity time.Time `json:"timestamp"`
}

// Clone returns a copy of the session that shares no memory with s.
func (s Session) Clone() Session {
	out := s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}

// Info summarizes the session for pickers.
func (s Session) Info() SessionInfo {
	return SessionInfo{
		ID:           s.ID,
		Title:        s.Title,
		Messages:     len(s.Messages),
		LastActivity: s.LastActivity,
	}
}
