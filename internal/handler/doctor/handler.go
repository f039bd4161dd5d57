package doctor

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/handler"
	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/service/dashboard"
	"github.com/Majedzeyad/cancare-api/internal/service/doctor"
	"github.com/Majedzeyad/cancare-api/internal/service/override"
	"github.com/Majedzeyad/cancare-api/pkg/search"
)

var (
	patientSearchFields  = []string{"name", "email", "diagnosis"}
	labSearchFields      = []string{"test_type", "status", "patient_name"}
	overrideSearchFields = []string{"medication", "reason", "nurse_name"}
)

type Handler struct {
	service   *doctor.Service
	overrides *override.Service
	dashboard *dashboard.Service
}

func NewHandler(service *doctor.Service, overrides *override.Service, dash *dashboard.Service) *Handler {
	return &Handler{
		service:   service,
		overrides: overrides,
		dashboard: dash,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctor")
	{
		doctors.GET("/profile", h.GetProfile)
		doctors.GET("/dashboard", h.GetDashboard)
		doctors.GET("/patients", h.ListPatients)
		doctors.GET("/patients/:id/prescriptions", h.ListPrescriptions)
		doctors.GET("/patients/:id/records", h.ListMedicalRecords)
		doctors.GET("/appointments", h.ListAppointments)

		doctors.POST("/labs", h.RequestLabTest)
		doctors.GET("/labs/pending", h.ListPendingLabRequests)
		doctors.PUT("/labs/results/:id/notes", h.AddLabNotes)

		doctors.POST("/prescriptions", h.CreatePrescription)
		doctors.POST("/records", h.CreateMedicalRecord)

		doctors.GET("/overrides/pending", h.ListPendingOverrides)
		doctors.PUT("/overrides/:id/approve", h.ApproveOverride)
		doctors.PUT("/overrides/:id/reject", h.RejectOverride)
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
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("doctor profile not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) GetDashboard(c *gin.Context) {
	result := h.dashboard.DoctorStats(c.Request.Context(), uuid.Nil)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) ListPatients(c *gin.Context) {
	result := h.service.ListPatients(c.Request.Context(), uuid.Nil)
	patients := search.Filter(c.Query("search"), result.Value, patientSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) ListPendingLabRequests(c *gin.Context) {
	result := h.service.ListPendingLabRequests(c.Request.Context(), uuid.Nil)
	requests := search.Filter(c.Query("search"), result.Value, labSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(requests))
}

func (h *Handler) RequestLabTest(c *gin.Context) {
	var req model.CreateLabTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	request, err := h.service.RequestLabTest(c.Request.Context(), &req)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(request))
}

func (h *Handler) AddLabNotes(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid result ID"))
		return
	}

	var req model.AddLabNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.AddLabNotes(c.Request.Context(), resultID, req.Notes); err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rx, err := h.service.CreatePrescription(c.Request.Context(), &req)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rx))
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	result := h.service.ListPrescriptions(c.Request.Context(), patientID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) CreateMedicalRecord(c *gin.Context) {
	var req model.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rec, err := h.service.CreateMedicalRecord(c.Request.Context(), &req)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rec))
}

func (h *Handler) ListMedicalRecords(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	result := h.service.ListMedicalRecords(c.Request.Context(), patientID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	result := h.service.ListAppointments(c.Request.Context(), uuid.Nil)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result.Value))
}

func (h *Handler) ListPendingOverrides(c *gin.Context) {
	result := h.overrides.ListPendingForDoctor(c.Request.Context(), uuid.Nil)
	requests := search.Filter(c.Query("search"), result.Value, overrideSearchFields)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(requests))
}

func (h *Handler) ApproveOverride(c *gin.Context) {
	h.decideOverride(c, h.overrides.Approve)
}

func (h *Handler) RejectOverride(c *gin.Context) {
	h.decideOverride(c, h.overrides.Reject)
}

func (h *Handler) decideOverride(c *gin.Context, decide func(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid override ID"))
		return
	}

	request, err := decide(c.Request.Context(), id)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(request))
}

// targetID resolves the profile target: an explicit ?id= or the caller.
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
