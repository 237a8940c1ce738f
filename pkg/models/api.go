// pkg/models/api.go
package models

import "github.com/lexpro/backoffice/pkg/apperrors"

// Laravel-style validation error body
type ValidationErrorResponse struct {
	Message string              `json:"message" example:"Validation failed"`
	Errors  map[string][]string `json:"errors"`
}

// Generic error body (401/403/404/409/500/503)
type ErrorResponse struct {
	Error   bool   `json:"error" example:"true"`
	Message string `json:"message" example:"Not Found"`
	Code    string `json:"code,omitempty" example:"NOT_FOUND"`
	Report  any    `json:"report,omitempty"` // steps performed before a multi-step command failed
}

// Body for 207 responses when a batch partially failed.
type BatchFailureResponse struct {
	Error     bool                `json:"error" example:"true"`
	Message   string              `json:"message"`
	Code      string              `json:"code" example:"PARTIAL_FAILURE"`
	Succeeded int                 `json:"succeeded"`
	Failed    []apperrors.Failure `json:"failed"`
}
