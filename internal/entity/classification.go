package entity

import "github.com/16mlwood-afk/invoice-parser-sub002/constants"

// FormatClassification labels the invoice layout family. Confidence is a
// normalized heuristic match strength, not a probability.
type FormatClassification struct {
	Format     constants.InvoiceFormat `json:"format"`
	Confidence float64                 `json:"confidence"`
}

// LanguageDetectionResult identifies the invoice language and region
// variant. A confidence below the detector's floor means the English
// generic parser was selected as a fallback.
type LanguageDetectionResult struct {
	Language   constants.Language `json:"language"`
	Confidence float64            `json:"confidence"`
}
