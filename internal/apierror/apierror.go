// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Code is a stable machine-readable kind; Meta carries structured context
// (e.g. which product lacked stock and by how much).
type APIError struct {
	Code   string         `json:"code,omitempty"`
	Detail string         `json:"detail"`
	Meta   map[string]any `json:"meta,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewCoded builds an envelope with a machine-readable code and optional metadata.
func NewCoded(code, msg string, meta map[string]any) *APIError {
	return &APIError{Code: code, Detail: msg, Meta: meta}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
