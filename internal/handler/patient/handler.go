package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/handler"
	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/service/patientportal"
	"github.com/Majedzeyad/cancare-api/pkg/search"
)

var (
	labSearchFields  = []string{"test_type", "value", "status"}
	postSearchFields = []string{"title", "body", "author_name"}
)

type Handler struct {
	service *patientportal.Service
}

func NewHandler(service *patientportal.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patient")
	{
		patients.GET("/profile", h.GetProfile)
		patients.GET("/labs", h.ListLabResults)
		patients.GET("/prescriptions/active", h.ListActivePrescriptions)
		patients.GET("/appointments", h.ListAppointments)

		patients.GET("/posts", h.ListPosts)
		patients.POST("/posts", h.CreatePost)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.service.OwnProfile(c.Request.Context())
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse("failed to load profile"))
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient profile not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ListLabResults(c *gin.Context) {
	result := h.service.ListLabResults(c.Request.Context(), uuid.Nil)
	results := search.Filter(c.Query("search"), result.Value, labSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(results))
}

func (h *Handler) ListActivePrescriptions(c *gin.Context) {
	result := h.service.ListActivePrescriptions(c.Request.Context(), uuid.Nil)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	result := h.service.ListAppointments(c.Request.Context(), uuid.Nil)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) ListPosts(c *gin.Context) {
	result := h.service.ListPosts(c.Request.Context())
	posts := search.Filter(c.Query("search"), result.Value, postSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(posts))
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), &req)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(post))
}
