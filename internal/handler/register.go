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

type RegisterHandler struct{ svc service.CashService }

func NewRegisterHandler(svc service.CashService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Open godoc
// @Summary Records the day's opening float
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenRegisterRequest true "Opening float"
// @Success 200 {object} model.CashSessionReport
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	report, err := h.svc.OpenRegister(c.Request.Context(), req.OpeningFloat, middleware.Operator(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Close godoc
// @Summary Closes the register for a day; idempotent per day key
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseRegisterRequest true "Drawer count and withdrawals"
// @Success 200 {object} dto.CloseRegisterResponse
// @Router /v1/register/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	report, alreadyClosed, err := h.svc.CloseRegister(c.Request.Context(), req, middleware.Operator(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CloseRegisterResponse{AlreadyClosed: alreadyClosed, Report: report})
}

// Today godoc
// @Summary Returns today's register state with live sales totals
// @Tags register
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TodayReportResponse
// @Router /v1/register/today [get]
func (h *RegisterHandler) Today(c *gin.Context) {
	resp, err := h.svc.TodayReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reports lists past session reports, newest first.
func (h *RegisterHandler) Reports(c *gin.Context) {
	reports, err := h.svc.ListReports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reports})
}

// AddExpense godoc
// @Summary Adds a cash expense to the day's sheet
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ExpenseRequest true "Expense"
// @Success 201 {object} model.ExpenseEntry
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/expenses [post]
func (h *RegisterHandler) AddExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	entry, err := h.svc.AddExpense(c.Request.Context(), req, middleware.Operator(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListExpenses returns the expense sheet for a day (today when omitted).
func (h *RegisterHandler) ListExpenses(c *gin.Context) {
	entries, err := h.svc.ListExpenses(c.Request.Context(), c.Query("day"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// RemoveExpense deletes one expense entry while the day is still open.
func (h *RegisterHandler) RemoveExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.RemoveExpense(c.Request.Context(), id, c.Query("day")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
