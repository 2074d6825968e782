package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/lechug1122/LuisITRepair/internal/apierror"
	"github.com/lechug1122/LuisITRepair/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the service error taxonomy onto HTTP status codes:
// validation → 400, not found → 404, conflicts → 409, unmet preconditions
// → 412. Anything unrecognized is deferred to the ErrorHandler middleware
// as a 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	var dup *service.DuplicateServiceError
	if errors.As(err, &dup) {
		c.JSON(http.StatusConflict, apierror.NewDuplicate(dup.Error(), dup.ExistingFolio))
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrMissingFolio),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrDuplicateFolio),
		errors.Is(err, service.ErrImmutableFolio),
		errors.Is(err, service.ErrLocked),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrRegisterClosed),
		errors.Is(err, service.ErrAlreadyDelivered):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNotPaid),
		errors.Is(err, service.ErrStillInService),
		errors.Is(err, service.ErrRegisterNotOpen),
		errors.Is(err, service.ErrInsufficientPay):
		c.JSON(http.StatusPreconditionFailed, apierror.New(err.Error()))
	default:
		// ErrorHandler middleware logs it and writes the 500 envelope.
		_ = c.Error(err)
	}
}
