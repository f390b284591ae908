package api

import (
	"encoding/json"
	"net/http"
	"time"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/internal/service"
	apperrors "dira-directory/backend/pkg/errors"
	"dira-directory/backend/pkg/logger"
	"dira-directory/backend/pkg/resilience"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the assistant chat endpoints
type ChatHandler struct {
	chats *service.ChatService
	users *service.UserService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chats *service.ChatService, users *service.UserService) *ChatHandler {
	return &ChatHandler{chats: chats, users: users}
}

// RegisterRoutes wires the chat endpoints; all of them require auth
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	chats := r.Group("/chats", requireAuth)
	chats.GET("", h.ListChats)
	chats.POST("", h.CreateChat)
	chats.GET("/quota", h.GetQuota)
	chats.GET("/:id", h.GetChat)
	chats.GET("/:id/messages", h.ListMessages)
	chats.POST("/:id/messages", h.SendMessage)
}

// GetQuota reports how many chats the caller may still open this month
func (h *ChatHandler) GetQuota(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	remaining, err := h.chats.RemainingChats(user.ID, time.Now())
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to read quota"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining": remaining, "unlimited": remaining == -1})
}

// ListChats returns the caller's chats
func (h *ChatHandler) ListChats(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	chats, err := h.chats.ListChats(user.ID)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list chats"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// CreateChat opens a new conversation, subject to the monthly quota
func (h *ChatHandler) CreateChat(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	var req models.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", err.Error()))
		return
	}

	response, err := h.chats.CreateChat(user.ID, &req)
	if err != nil {
		if err == service.ErrChatLimitReached {
			c.Error(apperrors.NewTooManyRequestsError("CHAT_LIMIT_REACHED", "Monthly chat limit reached").
				WithDetails(gin.H{"remaining": 0}))
			return
		}
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to create chat"))
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetChat returns one of the caller's chats
func (h *ChatHandler) GetChat(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	chatID, appErr := pathID(c, "id")
	if appErr != nil {
		c.Error(appErr)
		return
	}

	chat, err := h.chats.GetChat(chatID, user.ID, c.Query("sessionId"))
	if err != nil {
		if err == service.ErrChatNotFound {
			c.Error(apperrors.NewNotFoundError("NOT_FOUND", "Chat not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to get chat"))
		return
	}

	c.JSON(http.StatusOK, chat)
}

// ListMessages returns one page of a chat's history in chronological order
func (h *ChatHandler) ListMessages(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	chatID, appErr := pathID(c, "id")
	if appErr != nil {
		c.Error(appErr)
		return
	}

	messages, err := h.chats.ListMessages(chatID, user.ID, c.Query("sessionId"),
		queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		if err == service.ErrChatNotFound {
			c.Error(apperrors.NewNotFoundError("NOT_FOUND", "Chat not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list messages"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage relays one user message and streams the assistant's reply as
// server-sent events. Validation failures are reported as normal JSON
// errors; once streaming starts, failures arrive as an error event.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	chatID, appErr := pathID(c, "id")
	if appErr != nil {
		c.Error(appErr)
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", err.Error()))
		return
	}

	log := logger.FromContext(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Streaming not supported"))
		return
	}

	writeEvent := func(payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(data)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()
	}

	streamStarted := false
	onDelta := func(chunk string) {
		if !streamStarted {
			h.writeStreamHeaders(c)
			streamStarted = true
		}
		writeEvent(gin.H{"content": chunk})
	}

	message, err := h.chats.SendMessage(c.Request.Context(), user.ID, chatID, &req, onDelta)
	if err != nil {
		if !streamStarted {
			switch err {
			case service.ErrChatNotFound:
				c.Error(apperrors.NewNotFoundError("NOT_FOUND", "Chat not found"))
			case service.ErrAIUnavailable, resilience.ErrCircuitOpen:
				c.Error(apperrors.NewBadGatewayError("UPSTREAM_ERROR", "Assistant is currently unavailable"))
			default:
				if c.Request.Context().Err() != nil {
					return
				}
				c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to send message"))
			}
			return
		}

		// Headers are already out; surface the failure inside the stream
		if c.Request.Context().Err() == nil {
			log.Warn("chat stream failed after start", "chatId", chatID, "error", err.Error())
			writeEvent(gin.H{"error": "Assistant is currently unavailable"})
		}
		return
	}

	if !streamStarted {
		h.writeStreamHeaders(c)
	}

	writeEvent(gin.H{"done": true, "messageId": message.ID, "model": message.Model})
	c.Writer.Write([]byte("data: [DONE]\n\n"))
	flusher.Flush()
}

func (h *ChatHandler) writeStreamHeaders(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
}
