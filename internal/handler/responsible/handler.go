package responsible

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/handler"
	"github.com/Majedzeyad/cancare-api/internal/service/dashboard"
	"github.com/Majedzeyad/cancare-api/internal/service/responsible"
	"github.com/Majedzeyad/cancare-api/pkg/search"
)

var patientSearchFields = []string{"name", "diagnosis"}

type Handler struct {
	service   *responsible.Service
	dashboard *dashboard.Service
}

func NewHandler(service *responsible.Service, dash *dashboard.Service) *Handler {
	return &Handler{
		service:   service,
		dashboard: dash,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	parties := r.Group("/responsible")
	{
		parties.GET("/profile", h.GetProfile)
		parties.GET("/dashboard", h.GetDashboard)
		parties.GET("/patients", h.ListPatients)
		parties.GET("/patients/:id/labs", h.ListLabResults)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.GetString("caller_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing caller identity"))
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), id)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse("failed to load profile"))
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("responsible party profile not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) GetDashboard(c *gin.Context) {
	result := h.dashboard.ResponsibleStats(c.Request.Context(), uuid.Nil)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) ListPatients(c *gin.Context) {
	result := h.service.ListPatients(c.Request.Context(), uuid.Nil)
	patients := search.Filter(c.Query("search"), result.Value, patientSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) ListLabResults(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	result := h.service.ListLabResults(c.Request.Context(), patientID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}
