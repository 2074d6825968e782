package service

import (
	"errors"
	"fmt"
)

// Domain errors, grouped by the taxonomy the handlers map to HTTP codes:
// validation → 400, conflict → 409, precondition → 412, not found → 404.
// Anything else is treated as transient infrastructure failure.
var (
	// Validation
	ErrMissingFolio  = errors.New("folio is required")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidStatus = errors.New("unknown status value")

	// Conflict
	ErrDuplicateFolio    = errors.New("folio already exists")
	ErrImmutableFolio    = errors.New("folio cannot be changed once assigned")
	ErrLocked            = errors.New("record is locked by a terminal status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrRegisterClosed    = errors.New("register is already closed for this day")
	ErrAlreadyDelivered  = errors.New("service was already delivered")

	// Precondition
	ErrNotPaid         = errors.New("service has no recorded sale; collect payment at the POS first")
	ErrStillInService  = errors.New("service is still in maintenance")
	ErrRegisterNotOpen = errors.New("no opening float recorded for today")
	ErrInsufficientPay = errors.New("payment total is less than the sale total")

	ErrNotFound = errors.New("not found")
)

// DuplicateServiceError carries the folio of the already-active record so the
// operator can resolve the conflict manually.
type DuplicateServiceError struct {
	ExistingFolio string
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("an active service for this device already exists (folio %s)", e.ExistingFolio)
}
