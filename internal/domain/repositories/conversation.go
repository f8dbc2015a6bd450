package repositories

import (
	"context"
	"time"

	"chatgate/internal/domain"
)

// ConversationRepository owns durable conversation records.
//
// Ownership rule: every read is scoped by userID, and a conversation that
// exists but belongs to someone else is indistinguishable from one that does
// not exist (ErrNotFound in both cases).
type ConversationRepository interface {
	// Create persists a new conversation, including any initial messages.
	// Assigns ID/CreatedAt/UpdatedAt on the passed conversation.
	Create(ctx context.Context, conv *domain.Conversation) error

	// GetOwned returns the conversation only if it belongs to userID,
	// otherwise domain.ErrNotFound.
	GetOwned(ctx context.Context, conversationID, userID string) (*domain.Conversation, error)

	// ListByUser returns the user's conversations, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error)

	// AppendMessages atomically appends msgs to the stored record, but only
	// if its updated_at still equals expected. A concurrent append in between
	// surfaces domain.ErrConflict; no partial append is ever observable.
	// Returns the new updated_at on success.
	AppendMessages(ctx context.Context, conversationID, userID string, msgs []domain.Message, expected time.Time) (time.Time, error)
}
