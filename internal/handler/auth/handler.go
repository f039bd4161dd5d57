package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Majedzeyad/cancare-api/internal/handler"
	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
)

type Handler struct {
	service identity.Service
}

func NewHandler(service identity.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse("invalid credentials"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}
