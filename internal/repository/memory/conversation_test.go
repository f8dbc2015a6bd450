package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatgate/internal/domain"
)

func newConversation(userID string, contents ...string) *domain.Conversation {
	conv := &domain.Conversation{
		UserID:  userID,
		UseCase: domain.UseCaseDefault,
	}
	for i, content := range contents {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		conv.Messages = append(conv.Messages, domain.Message{
			Role:      role,
			Content:   content,
			Timestamp: time.Now().UTC(),
		})
	}
	return conv
}

func TestCreateAssignsIdentityAndTimestamps(t *testing.T) {
	repo := NewConversationRepository()
	conv := newConversation("user-a", "hello", "hi")

	if err := repo.Create(context.Background(), conv); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.ID == "" {
		t.Error("Create should assign an ID")
	}
	if conv.CreatedAt.IsZero() || conv.UpdatedAt.IsZero() {
		t.Error("Create should assign timestamps")
	}

	loaded, err := repo.GetOwned(context.Background(), conv.ID, "user-a")
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("loaded %d messages, want 2", len(loaded.Messages))
	}
}

func TestGetOwnedCrossUserIsNotFound(t *testing.T) {
	repo := NewConversationRepository()
	conv := newConversation("user-b", "hello")
	if err := repo.Create(context.Background(), conv); err != nil {
		t.Fatal(err)
	}

	_, err := repo.GetOwned(context.Background(), conv.ID, "user-a")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-user access should be ErrNotFound, got %v", err)
	}
}

func TestAppendMessagesConflictOnStaleVersion(t *testing.T) {
	repo := NewConversationRepository()
	conv := newConversation("user-a", "hello", "hi")
	if err := repo.Create(context.Background(), conv); err != nil {
		t.Fatal(err)
	}

	pair := []domain.Message{
		{Role: domain.RoleUser, Content: "second", Timestamp: time.Now().UTC()},
		{Role: domain.RoleAssistant, Content: "reply", Timestamp: time.Now().UTC()},
	}

	updatedAt, err := repo.AppendMessages(context.Background(), conv.ID, "user-a", pair, conv.UpdatedAt)
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	if !updatedAt.After(conv.UpdatedAt) {
		t.Error("append should advance the version")
	}

	// Second append against the original version loses the race.
	_, err = repo.AppendMessages(context.Background(), conv.ID, "user-a", pair, conv.UpdatedAt)
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("stale append should be ErrConflict, got %v", err)
	}

	loaded, err := repo.GetOwned(context.Background(), conv.ID, "user-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages) != 4 {
		t.Errorf("conflicting append must not mutate history: %d messages, want 4", len(loaded.Messages))
	}
}

func TestAppendMessagesUnknownConversation(t *testing.T) {
	repo := NewConversationRepository()
	_, err := repo.AppendMessages(context.Background(), "missing", "user-a", nil, time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByUserOrdersByMostRecentlyUpdated(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	first := newConversation("user-a", "one")
	second := newConversation("user-a", "two")
	other := newConversation("user-b", "theirs")
	for _, conv := range []*domain.Conversation{first, second, other} {
		if err := repo.Create(ctx, conv); err != nil {
			t.Fatal(err)
		}
	}

	// Touch the first conversation so it becomes the most recent.
	time.Sleep(2 * time.Millisecond)
	if _, err := repo.AppendMessages(ctx, first.ID, "user-a", []domain.Message{
		{Role: domain.RoleUser, Content: "again", Timestamp: time.Now().UTC()},
		{Role: domain.RoleAssistant, Content: "reply", Timestamp: time.Now().UTC()},
	}, first.UpdatedAt); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListByUser(ctx, "user-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d conversations, want 2", len(list))
	}
	if list[0].ID != first.ID {
		t.Errorf("most recently updated conversation should come first")
	}
}

func TestLoadedConversationIsACopy(t *testing.T) {
	repo := NewConversationRepository()
	conv := newConversation("user-a", "hello")
	if err := repo.Create(context.Background(), conv); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.GetOwned(context.Background(), conv.ID, "user-a")
	if err != nil {
		t.Fatal(err)
	}
	loaded.Messages[0].Content = "mutated"

	reloaded, err := repo.GetOwned(context.Background(), conv.ID, "user-a")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Messages[0].Content != "hello" {
		t.Error("mutating a loaded conversation must not affect the store")
	}
}
