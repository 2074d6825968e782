package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lechug1122/LuisITRepair/internal/apierror"
	"github.com/lechug1122/LuisITRepair/internal/dto"
	"github.com/lechug1122/LuisITRepair/internal/middleware"
	"github.com/lechug1122/LuisITRepair/internal/service"
)

type ServicesHandler struct {
	intake  service.IntakeService
	records service.RecordService
}

func NewServicesHandler(intake service.IntakeService, records service.RecordService) *ServicesHandler {
	return &ServicesHandler{intake: intake, records: records}
}

// Create godoc
// @Summary Registers a new repair intake and mints its folio
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateServiceRequest true "Intake data"
// @Success 201 {object} dto.CreateServiceResponse
// @Failure 409 {object} apierror.DuplicateError
// @Router /v1/services [post]
func (h *ServicesHandler) Create(c *gin.Context) {
	var req dto.CreateServiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.intake.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Fetches one service record by id
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} model.ServiceRecord
// @Failure 404 {object} apierror.APIError
// @Router /v1/services/{id} [get]
func (h *ServicesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	rec, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update godoc
// @Summary Applies a partial update, including status transitions
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param body body dto.UpdateServiceRequest true "Fields to change"
// @Success 200 {object} model.ServiceRecord
// @Failure 409 {object} apierror.APIError
// @Failure 412 {object} apierror.APIError
// @Router /v1/services/{id} [patch]
func (h *ServicesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateServiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rec, err := h.records.Update(c.Request.Context(), id, req, middleware.IsAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// LookupByFolio godoc
// @Summary Resolves a folio to its service record
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param folio path string true "Folio"
// @Success 200 {object} model.ServiceRecord
// @Failure 404 {object} apierror.APIError
// @Router /v1/services/folio/{folio} [get]
func (h *ServicesHandler) LookupByFolio(c *gin.Context) {
	rec, err := h.intake.LookupByFolio(c.Request.Context(), c.Param("folio"))
	if err != nil {
		respondError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, apierror.New("no service with that folio"))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListPending returns records still in the shop (non-terminal statuses).
func (h *ServicesHandler) ListPending(c *gin.Context) {
	recs, err := h.intake.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recs})
}

// ListHistory returns delivered, cancelled and unrepairable records.
func (h *ServicesHandler) ListHistory(c *gin.Context) {
	recs, err := h.intake.ListHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recs})
}
