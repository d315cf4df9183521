package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectflow/projectflow-api/internal/dto"
	apierrors "github.com/projectflow/projectflow-api/internal/errors"
	"github.com/projectflow/projectflow-api/internal/middleware"
	"github.com/projectflow/projectflow-api/internal/services"
)

// ChatHandler coordinates chat-related HTTP handlers.
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ListChats returns the chats the current user participates in, newest
// activity first, with per-chat unread counts.
func (h *ChatHandler) ListChats(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	summaries, err := h.chatService.ListChats(actor)
	if err != nil {
		respondChatError(c, err)
		return
	}

	items := make([]dto.ChatListItemDTO, len(summaries))
	for i, summary := range summaries {
		items[i] = dto.ToChatListItemDTO(summary)
	}

	c.JSON(http.StatusOK, gin.H{
		"chats": items,
	})
}

// GetChat returns a chat with its participants and messages, marking the
// viewer's unread messages as read.
func (h *ChatHandler) GetChat(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	chatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	chat, err := h.chatService.GetChat(actor, chatID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChatDTO(*chat))
}

// SendMessage posts a message to a chat the current user participates in.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	chatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type MessageRequest struct {
		Body string `json:"body" binding:"required"`
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.chatService.SendMessage(actor, chatID, req.Body)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}

// OpenPrivateChat returns the private chat between the current user and
// another user, creating it if none exists yet.
func (h *ChatHandler) OpenPrivateChat(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type PrivateChatRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req PrivateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	chat, err := h.chatService.FindOrCreatePrivateChat(actor, req.UserID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChatDTO(*chat))
}

func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNotAccepted):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrBodyRequired),
		errors.Is(err, services.ErrCannotChatWithSelf):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
