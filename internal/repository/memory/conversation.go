// Package memory provides an in-memory ConversationRepository with the same
// contract as the PostgreSQL implementation, including the conditional
// append. It backs tests and the STORE=memory dev mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatgate/internal/domain"
	"chatgate/internal/domain/repositories"
)

type ConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
}

func NewConversationRepository() repositories.ConversationRepository {
	return &ConversationRepository{
		conversations: make(map[string]*domain.Conversation),
	}
}

func (r *ConversationRepository) Create(_ context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyConversation(conv)
	r.conversations[conv.ID] = &stored
	return nil
}

func (r *ConversationRepository) GetOwned(_ context.Context, conversationID, userID string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.conversations[conversationID]
	if !ok || stored.UserID != userID {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}

	conv := copyConversation(stored)
	return &conv, nil
}

func (r *ConversationRepository) ListByUser(_ context.Context, userID string) ([]domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conversations := []domain.Conversation{}
	for _, stored := range r.conversations {
		if stored.UserID == userID {
			conversations = append(conversations, copyConversation(stored))
		}
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

func (r *ConversationRepository) AppendMessages(_ context.Context, conversationID, userID string, msgs []domain.Message, expected time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.conversations[conversationID]
	if !ok || stored.UserID != userID {
		return time.Time{}, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	if !stored.UpdatedAt.Equal(expected) {
		return time.Time{}, fmt.Errorf("conversation %s was modified concurrently: %w", conversationID, domain.ErrConflict)
	}

	stored.Messages = append(stored.Messages, msgs...)
	stored.UpdatedAt = time.Now().UTC()
	// Guard against equal timestamps on coarse clocks; the version must move.
	if stored.UpdatedAt.Equal(expected) {
		stored.UpdatedAt = expected.Add(time.Nanosecond)
	}
	return stored.UpdatedAt, nil
}

func copyConversation(conv *domain.Conversation) domain.Conversation {
	copied := *conv
	copied.Messages = make([]domain.Message, len(conv.Messages))
	copy(copied.Messages, conv.Messages)
	return copied
}
