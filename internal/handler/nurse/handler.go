package nurse

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/handler"
	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/service/nurse"
	"github.com/Majedzeyad/cancare-api/internal/service/override"
	"github.com/Majedzeyad/cancare-api/pkg/search"
)

var (
	patientSearchFields  = []string{"name", "email", "diagnosis"}
	overrideSearchFields = []string{"medication", "reason", "status"}
)

type Handler struct {
	service   *nurse.Service
	overrides *override.Service
}

func NewHandler(service *nurse.Service, overrides *override.Service) *Handler {
	return &Handler{
		service:   service,
		overrides: overrides,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	nurses := r.Group("/nurse")
	{
		nurses.GET("/profile", h.GetProfile)
		nurses.GET("/patients", h.ListPatients)
		nurses.GET("/appointments", h.ListAppointments)

		nurses.POST("/overrides", h.CreateOverride)
		nurses.GET("/overrides", h.ListOverrides)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	target, ok := targetID(c)
	if !ok {
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), target)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse("failed to load profile"))
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("nurse profile not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ListPatients(c *gin.Context) {
	result := h.service.ListPatients(c.Request.Context(), uuid.Nil)
	patients := search.Filter(c.Query("search"), result.Value, patientSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	result := h.service.ListAppointments(c.Request.Context(), uuid.Nil)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) CreateOverride(c *gin.Context) {
	var req model.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	request, err := h.overrides.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(request))
}

func (h *Handler) ListOverrides(c *gin.Context) {
	result := h.overrides.ListForNurse(c.Request.Context(), uuid.Nil)
	requests := search.Filter(c.Query("search"), result.Value, overrideSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(requests))
}

func targetID(c *gin.Context) (uuid.UUID, bool) {
	if raw := c.Query("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid ID"))
			return uuid.Nil, false
		}
		return id, true
	}

	id, err := uuid.Parse(c.GetString("caller_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing caller identity"))
		return uuid.Nil, false
	}
	return id, true
}
