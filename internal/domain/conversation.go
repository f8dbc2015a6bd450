package domain

import (
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem is only ever sent on the wire to the completion API as the
	// synthetic persona entry; it is never persisted in a conversation.
	RoleSystem Role = "system"
)

// Message is a single turn entry owned by its conversation. Once appended,
// role and content are immutable.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an append-only message history owned by one user.
// UseCase is fixed at creation; messages are never reordered or deleted.
// UpdatedAt doubles as the version for conditional appends.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UseCase   UseCase   `json:"useCase"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
