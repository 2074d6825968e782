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

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Checkout godoc
// @Summary Records a POS sale; service lines are delivered in the same transaction
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CheckoutRequest true "Cart and payment"
// @Success 201 {object} dto.SaleResponse
// @Failure 409 {object} apierror.APIError
// @Failure 412 {object} apierror.APIError
// @Router /v1/sales [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), req, middleware.Operator(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Fetches one sale by id
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {object} model.Sale
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	sale, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// ListByDay godoc
// @Summary Lists the sales of one day (today when day is omitted)
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param day query string false "Day key YYYY-MM-DD"
// @Success 200 {object} object
// @Router /v1/sales [get]
func (h *SalesHandler) ListByDay(c *gin.Context) {
	sales, err := h.svc.ListByDay(c.Request.Context(), c.Query("day"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sales})
}
