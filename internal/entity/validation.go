package entity

import "github.com/16mlwood-afk/invoice-parser-sub002/constants"

// ValidationIssue is a single finding from the validation engine.
type ValidationIssue struct {
	Type     string                       `json:"type"`
	Severity constants.ValidationSeverity `json:"severity"`
	Message  string                       `json:"message"`
	Details  map[string]any               `json:"details,omitempty"`
}

// ValidationResult is the outcome of validating one InvoiceRecord.
// IsValid is false iff Errors contains a critical finding.
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
	Score    int               `json:"score"`
	IsValid  bool              `json:"is_valid"`
}
