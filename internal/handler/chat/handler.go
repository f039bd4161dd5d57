package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/handler"
	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/service/chat"
)

type Handler struct {
	service *chat.Service
}

func NewHandler(service *chat.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	chats := r.Group("/chats")
	{
		chats.POST("", h.CreateChat)
		chats.GET("", h.ListChats)
		chats.POST("/:id/join", h.JoinChat)
		chats.GET("/:id/messages", h.ListMessages)
		chats.GET("/:id/unread", h.UnreadCount)
		chats.POST("/:id/messages", h.SendMessage)
		chats.PUT("/:id/read", h.MarkRead)
	}
}

func (h *Handler) CreateChat(c *gin.Context) {
	var req model.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListChats(c *gin.Context) {
	result := h.service.List(c.Request.Context())
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) JoinChat(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Join(c.Request.Context(), chatID); err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListMessages(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	result := h.service.Messages(c.Request.Context(), chatID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	result := h.service.Unread(c.Request.Context(), chatID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unread": result.Value}))
}

func (h *Handler) SendMessage(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), chatID, req.Text)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(msg))
}

func (h *Handler) MarkRead(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), chatID); err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func chatIDParam(c *gin.Context) (uuid.UUID, bool) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid chat ID"))
		return uuid.Nil, false
	}
	return chatID, true
}
