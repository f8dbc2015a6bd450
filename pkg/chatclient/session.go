package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatgate/internal/domain"
)

var (
	// ErrEmptyMessage rejects blank input before any state change.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInFlight rejects a second send while one is pending, so
	// optimistic and confirmed states never interleave out of order.
	ErrSendInFlight = errors.New("another send is in progress")
)

// API is the slice of Client that Session depends on.
type API interface {
	SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error)
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error)
}

// LocalMessage is a message as the client renders it. Token is a local
// correlation token, distinct from any server-side identity: reconciliation
// matches by token, never by position.
type LocalMessage struct {
	Token     string
	Role      domain.Role
	Content   string
	Timestamp time.Time
	Pending   bool
}

// Session holds the client-side state for one active conversation. It is
// safe for concurrent use, but permits only a single in-flight send.
//
// The generation counter guards against stale completions: anything that
// changes the active conversation identity bumps it, and a send that
// resolves under an older generation discards its result instead of
// clobbering newer state.
type Session struct {
	mu             sync.Mutex
	api            API
	useCase        domain.UseCase
	conversationID string
	messages       []LocalMessage
	conversations  []domain.Conversation
	inFlight       bool
	generation     int
}

// NewSession creates a session for the given use case. Each session is
// independent; concurrent sessions (tabs, tests) never share state.
func NewSession(api API, useCase domain.UseCase) *Session {
	return &Session{
		api:     api,
		useCase: domain.NormalizeUseCase(string(useCase)),
	}
}

// SendMessage optimistically appends the user message, submits it, and
// reconciles with the server response. On failure the optimistic entry is
// removed entirely; no partial or error message is synthesized into history.
func (s *Session) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	token := uuid.NewString()
	s.messages = append(s.messages, LocalMessage{
		Token:     token,
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: time.Now().UTC(),
		Pending:   true,
	})
	s.inFlight = true
	generation := s.generation
	conversationID := s.conversationID
	useCase := s.useCase
	s.mu.Unlock()

	resp, err := s.api.SendMessage(ctx, SendRequest{
		Message:        text,
		ConversationID: conversationID,
		UseCase:        string(useCase),
	})

	s.mu.Lock()
	s.inFlight = false

	if s.generation != generation {
		// The active conversation changed while we were waiting; the reset
		// already cleared the optimistic entry. Drop the result.
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		s.removeByTokenLocked(token)
		s.mu.Unlock()
		return err
	}

	s.confirmByTokenLocked(token)
	s.messages = append(s.messages, LocalMessage{
		Token:     uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   resp.Message,
		Timestamp: time.Now().UTC(),
	})

	adopted := conversationID == "" && resp.ConversationID != ""
	if adopted {
		s.conversationID = resp.ConversationID
	}
	s.mu.Unlock()

	if adopted {
		s.refreshConversations(ctx, generation)
	}
	return nil
}

// LoadConversation replaces the session state with a conversation fetched
// from the server. It changes the active conversation identity, so any
// in-flight send resolves stale.
func (s *Session) LoadConversation(ctx context.Context, conversationID string) error {
	conv, err := s.api.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}

	messages := make([]LocalMessage, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		messages = append(messages, LocalMessage{
			Token:     uuid.NewString(),
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	s.mu.Lock()
	s.generation++
	s.conversationID = conv.ID
	s.useCase = conv.UseCase
	s.messages = messages
	s.mu.Unlock()
	return nil
}

// RefreshConversations fetches the caller's conversation list.
func (s *Session) RefreshConversations(ctx context.Context) error {
	conversations, err := s.api.ListConversations(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()
	return nil
}

// ChangeUseCase switches the topical persona. It clears the active
// conversation so the next send starts a fresh one; no server call is made.
func (s *Session) ChangeUseCase(useCase domain.UseCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useCase = domain.NormalizeUseCase(string(useCase))
	s.conversationID = ""
	s.messages = nil
	s.generation++
}

// Reset clears the active conversation, keeping the use case.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = ""
	s.messages = nil
	s.generation++
}

// Messages returns the rendered history, always in append order.
func (s *Session) Messages() []LocalMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]LocalMessage, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Conversations returns the last fetched conversation list.
func (s *Session) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]domain.Conversation, len(s.conversations))
	copy(copied, s.conversations)
	return copied
}

// ConversationID returns the active conversation id, empty before the first
// confirmed turn.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// UseCase returns the active use case.
func (s *Session) UseCase() domain.UseCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useCase
}

// refreshConversations updates the list after a new conversation was
// adopted, unless the session has moved on in the meantime.
func (s *Session) refreshConversations(ctx context.Context, generation int) {
	conversations, err := s.api.ListConversations(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	if s.generation == generation {
		s.conversations = conversations
	}
	s.mu.Unlock()
}

func (s *Session) removeByTokenLocked(token string) {
	kept := s.messages[:0]
	for _, msg := range s.messages {
		if msg.Token != token {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
}

func (s *Session) confirmByTokenLocked(token string) {
	for i := range s.messages {
		if s.messages[i].Token == token {
			s.messages[i].Pending = false
			return
		}
	}
}
