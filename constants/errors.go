package constants

// ErrorCategory is the fixed taxonomy for categorized pipeline failures.
type ErrorCategory string

// Stable values (these exact strings appear in results and logs).
const (
	FileAccessError      ErrorCategory = "file_access_error"
	PDFParsingError      ErrorCategory = "pdf_parsing_error"
	FieldExtractionError ErrorCategory = "field_extraction_error"
	ValidationWarning    ErrorCategory = "validation_warning"
	UnknownError         ErrorCategory = "unknown_error"
)

// ErrorLevel classifies how a categorized error may be handled.
type ErrorLevel string

const (
	LevelCritical    ErrorLevel = "critical"
	LevelRecoverable ErrorLevel = "recoverable"
	LevelInfo        ErrorLevel = "info"
)

// Level returns the handling level for a category.
func (c ErrorCategory) Level() ErrorLevel {
	switch c {
	case FileAccessError:
		return LevelCritical
	case ValidationWarning:
		return LevelInfo
	default:
		return LevelRecoverable
	}
}

// Recoverable reports whether the pipeline should attempt partial
// extraction after an error of this category.
func (c ErrorCategory) Recoverable() bool {
	return c.Level() == LevelRecoverable
}
