// Package chat orchestrates the message turn lifecycle: validate input,
// resolve or create the conversation, obtain the assistant reply, and
// persist the completed turn pair.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatgate/internal/domain"
	"chatgate/internal/domain/repositories"
	"chatgate/internal/persona"
)

// Completer issues a single completion call for the given history under the
// given system prompt.
type Completer interface {
	Complete(ctx context.Context, history []domain.Message, systemPrompt string) (string, error)
}

// SendMessageRequest carries one user message into the service. UserID comes
// from the authentication collaborator, never from the request body.
type SendMessageRequest struct {
	UserID         string
	ConversationID string
	UseCase        string
	Message        string
}

// SendMessageResponse is the confirmed result of a completed turn.
type SendMessageResponse struct {
	Reply          string
	ConversationID string
}

// Service implements the conversation/turn lifecycle. It holds no
// cross-request mutable state; concurrency control lives in the repository's
// conditional append.
type Service struct {
	repo      repositories.ConversationRepository
	completer Completer
	personas  *persona.Registry
	logger    *slog.Logger
}

// NewService creates the chat orchestration service.
func NewService(
	repo repositories.ConversationRepository,
	completer Completer,
	personas *persona.Registry,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		completer: completer,
		personas:  personas,
		logger:    logger,
	}
}

// SendMessage runs one full turn. The durable store is only touched after a
// successful completion, so a failed upstream call leaves no orphaned user
// message: the conversation either gains a complete user+assistant pair or
// nothing at all.
func (s *Service) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: missing user identity", domain.ErrUnauthorized)
	}
	if err := validation.Validate(req.Message, validation.Required, validation.By(notBlank)); err != nil {
		return nil, &domain.ValidationError{Message: "Message content is required"}
	}

	var (
		conv  *domain.Conversation
		isNew bool
	)
	if req.ConversationID != "" {
		loaded, err := s.repo.GetOwned(ctx, req.ConversationID, req.UserID)
		if err != nil {
			return nil, err
		}
		conv = loaded
	} else {
		conv = &domain.Conversation{
			UserID:  req.UserID,
			UseCase: domain.NormalizeUseCase(req.UseCase),
		}
		isNew = true
	}

	// Version loaded before the in-memory mutation; the conditional append
	// below compares against it.
	base := conv.UpdatedAt

	userMsg := domain.Message{
		Role:      domain.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now().UTC(),
	}
	conv.Messages = append(conv.Messages, userMsg)

	reply, err := s.completer.Complete(ctx, conv.Messages, s.personas.PromptFor(conv.UseCase))
	if err != nil {
		var upstreamErr *domain.UpstreamError
		if errors.As(err, &upstreamErr) {
			s.logger.Error("completion failed",
				"reason", upstreamErr.Reason,
				"error", upstreamErr.Message,
				"conversation_id", conv.ID,
				"user_id", req.UserID,
			)
		}
		return nil, err
	}

	assistantMsg := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	}
	conv.Messages = append(conv.Messages, assistantMsg)

	if isNew {
		if err := s.repo.Create(ctx, conv); err != nil {
			return nil, err
		}
		s.logger.Info("conversation created",
			"conversation_id", conv.ID,
			"use_case", conv.UseCase,
			"user_id", req.UserID,
		)
	} else {
		updatedAt, err := s.repo.AppendMessages(ctx, conv.ID, req.UserID, []domain.Message{userMsg, assistantMsg}, base)
		if err != nil {
			return nil, err
		}
		conv.UpdatedAt = updatedAt
	}

	s.logger.Info("turn completed",
		"conversation_id", conv.ID,
		"user_id", req.UserID,
		"message_count", len(conv.Messages),
	)

	return &SendMessageResponse{
		Reply:          reply,
		ConversationID: conv.ID,
	}, nil
}

// ListConversations returns the caller's conversations, most recently
// updated first.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user identity", domain.ErrUnauthorized)
	}
	return s.repo.ListByUser(ctx, userID)
}

// GetConversation returns the full conversation if owned by userID.
func (s *Service) GetConversation(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user identity", domain.ErrUnauthorized)
	}
	return s.repo.GetOwned(ctx, conversationID, userID)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
