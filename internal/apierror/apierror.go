// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// DuplicateError points the operator at the already-active folio so the
// conflict can be resolved at the counter.
type DuplicateError struct {
	Detail        string `json:"detail"`
	ExistingFolio string `json:"existing_folio"`
}

func NewDuplicate(msg, folio string) *DuplicateError {
	return &DuplicateError{Detail: msg, ExistingFolio: folio}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
