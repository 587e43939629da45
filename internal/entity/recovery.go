package entity

import (
	"fmt"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
)

// RecoveryModePartial is the only recovery mode: a defensive re-extraction
// of critical fields after the normal pipeline failed.
const RecoveryModePartial = "partial_recovery"

// FieldError records why a single field is missing from a partial
// extraction.
type FieldError struct {
	Field string `json:"field"`
	Type  string `json:"type"`
}

// Field error types.
const (
	FieldNotFound        = "field_not_found"
	FieldExtractionError = "extraction_error"
)

// ExtractionMetadata is attached to an InvoiceRecord produced by the
// recovery subsystem. Confidence maps field names to 0.0 or 1.0 plus an
// "overall" mean; Usable reports whether both critical fields (order
// number, order date) were recovered.
type ExtractionMetadata struct {
	Mode              string             `json:"mode"`
	Confidence        map[string]float64 `json:"confidence"`
	Errors            []FieldError       `json:"errors"`
	RecoveryAttempted bool               `json:"recovery_attempted"`
	Usable            bool               `json:"usable"`
}

// CategorizedError is a pipeline failure mapped onto the fixed error
// taxonomy. It is the only error shape that crosses the pipeline boundary.
type CategorizedError struct {
	Type        constants.ErrorCategory `json:"type"`
	Level       constants.ErrorLevel    `json:"level"`
	Message     string                  `json:"message"`
	Context     string                  `json:"context,omitempty"`
	Recoverable bool                    `json:"recoverable"`
	Suggestion  string                  `json:"suggestion"`

	cause error
}

// NewCategorizedError builds a CategorizedError wrapping cause.
func NewCategorizedError(category constants.ErrorCategory, message, context string, cause error) *CategorizedError {
	return &CategorizedError{
		Type:        category,
		Level:       category.Level(),
		Message:     message,
		Context:     context,
		Recoverable: category.Recoverable(),
		cause:       cause,
	}
}

func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *CategorizedError) Unwrap() error { return e.cause }

// Suggestion is one remediation action proposed by the recovery
// subsystem. Lower priority values come first.
type Suggestion struct {
	Action   string `json:"action"`
	Priority int    `json:"priority"`
}
