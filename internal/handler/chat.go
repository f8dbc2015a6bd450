package handler

import (
	"context"
	"log/slog"
	"net/http"

	"chatgate/internal/domain"
	"chatgate/internal/httputil"
	"chatgate/internal/service/chat"
)

// ChatService is the slice of the chat service the handler consumes.
type ChatService interface {
	SendMessage(ctx context.Context, req *chat.SendMessageRequest) (*chat.SendMessageResponse, error)
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	GetConversation(ctx context.Context, conversationID, userID string) (*domain.Conversation, error)
}

// ChatHandler handles chat HTTP requests. Handlers only communicate with
// services, never repositories.
type ChatHandler struct {
	chatService ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type sendMessageBody struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	UseCase        string `json:"useCase,omitempty"`
}

type sendMessageResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// SendMessage runs one chat turn.
// POST /api/chat/send
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var body sendMessageBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chatService.SendMessage(r.Context(), &chat.SendMessageRequest{
		UserID:         userID,
		ConversationID: body.ConversationID,
		UseCase:        body.UseCase,
		Message:        body.Message,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sendMessageResponse{
		Message:        resp.Reply,
		ConversationID: resp.ConversationID,
	})
}

// ListConversations returns the caller's conversations, most recently
// updated first.
// GET /api/chat/conversations
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	conversations, err := h.chatService.ListConversations(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conversations)
}

// GetConversation returns a full conversation with its messages.
// GET /api/chat/conversation/{id}
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := PathParam(w, r, "id", "Conversation ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	conversation, err := h.chatService.GetConversation(r.Context(), conversationID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conversation)
}

// HealthCheck reports process liveness.
// GET /health
func (h *ChatHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
