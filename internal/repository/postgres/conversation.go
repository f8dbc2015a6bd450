package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatgate/internal/domain"
	"chatgate/internal/domain/repositories"
)

// ConversationRepository implements repositories.ConversationRepository on
// PostgreSQL. The full message history lives in a jsonb column; appends go
// through a single conditional UPDATE so interleaved turns can never
// overwrite one another.
type ConversationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(config *RepositoryConfig) repositories.ConversationRepository {
	return &ConversationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create persists a new conversation with its initial messages.
func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}

	payload, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, use_case, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING created_at, updated_at
	`, r.tables.Conversations)

	err = r.pool.QueryRow(ctx, query,
		conv.ID,
		conv.UserID,
		string(conv.UseCase),
		payload,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	return nil
}

// GetOwned retrieves a conversation scoped by owner. A conversation owned by
// another user is reported as not found.
func (r *ConversationRepository) GetOwned(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, use_case, messages, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Conversations)

	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, conversationID, userID).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.UseCase,
		&conv.Messages,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return &conv, nil
}

// ListByUser retrieves the user's conversations, most recently updated first.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, use_case, messages, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Conversations)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		err := rows.Scan(
			&conv.ID,
			&conv.UserID,
			&conv.UseCase,
			&conv.Messages,
			&conv.CreatedAt,
			&conv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	// Return empty slice instead of nil
	if conversations == nil {
		conversations = []domain.Conversation{}
	}

	return conversations, nil
}

// AppendMessages appends msgs atomically, conditional on the record's
// updated_at still matching the value the caller loaded. A lost race
// surfaces domain.ErrConflict so the caller can retry the whole turn.
func (r *ConversationRepository) AppendMessages(ctx context.Context, conversationID, userID string, msgs []domain.Message, expected time.Time) (time.Time, error) {
	payload, err := json.Marshal(msgs)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode messages: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET messages = messages || $1::jsonb, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND updated_at = $4
		RETURNING updated_at
	`, r.tables.Conversations)

	var updatedAt time.Time
	err = r.pool.QueryRow(ctx, query, payload, conversationID, userID, expected).Scan(&updatedAt)
	if err == nil {
		return updatedAt, nil
	}
	if !IsPgNoRowsError(err) {
		return time.Time{}, fmt.Errorf("append messages: %w", err)
	}

	// Zero rows: either the record moved on (version mismatch) or it does
	// not belong to this user at all.
	existsQuery := fmt.Sprintf(`
		SELECT 1 FROM %s WHERE id = $1 AND user_id = $2
	`, r.tables.Conversations)

	var one int
	err = r.pool.QueryRow(ctx, existsQuery, conversationID, userID).Scan(&one)
	if err != nil {
		if IsPgNoRowsError(err) {
			return time.Time{}, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("append messages: %w", err)
	}

	return time.Time{}, fmt.Errorf("conversation %s was modified concurrently: %w", conversationID, domain.ErrConflict)
}
