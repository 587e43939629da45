package recovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		category    constants.ErrorCategory
		level       constants.ErrorLevel
		recoverable bool
	}{
		{"file access", errors.New("open invoice.pdf: no such file or directory"), constants.FileAccessError, constants.LevelCritical, false},
		{"permission", errors.New("read report: permission denied"), constants.FileAccessError, constants.LevelCritical, false},
		{"pdf parsing", errors.New("pdf stream is corrupt"), constants.PDFParsingError, constants.LevelRecoverable, true},
		{"field extraction", errors.New("failed to extract order fields"), constants.FieldExtractionError, constants.LevelRecoverable, true},
		{"validation", errors.New("validation tolerance exceeded"), constants.ValidationWarning, constants.LevelInfo, false},
		{"unknown", errors.New("something odd happened"), constants.UnknownError, constants.LevelRecoverable, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			catErr := Categorize(tc.err, "invoice-1")
			assert.Equal(t, tc.category, catErr.Type)
			assert.Equal(t, tc.level, catErr.Level)
			assert.Equal(t, tc.recoverable, catErr.Recoverable)
			assert.NotEmpty(t, catErr.Suggestion)
			assert.Equal(t, "invoice-1", catErr.Context)
		})
	}
}

func TestCategorizeKeepsExistingCategory(t *testing.T) {
	orig := entity.NewCategorizedError(constants.PDFParsingError, "empty invoice text", "de", nil)
	catErr := Categorize(orig, "ignored")
	assert.Equal(t, constants.PDFParsingError, catErr.Type)
	assert.Equal(t, "de", catErr.Context)
	assert.NotEmpty(t, catErr.Suggestion)
}

func TestExtractPartialUsable(t *testing.T) {
	r := NewRecoverer(nil)

	text := "Bestellnummer: 302-1234567-1234567\nBestelldatum: 15.12.2023\nirgendwas unlesbares"
	rec := r.ExtractPartial(text, errors.New("failed to extract items"))

	require.NotNil(t, rec.Metadata)
	meta := rec.Metadata
	assert.Equal(t, entity.RecoveryModePartial, meta.Mode)
	assert.True(t, meta.RecoveryAttempted)
	assert.True(t, meta.Usable)
	assert.Equal(t, 1.0, meta.Confidence["order_number"])
	assert.Equal(t, 1.0, meta.Confidence["order_date"])
	assert.Equal(t, "302-1234567-1234567", rec.OrderNumber)
	require.NotNil(t, rec.OrderDate)
	assert.Equal(t, "2023-12-15", rec.OrderDate.Format("2006-01-02"))
}

func TestExtractPartialUnusable(t *testing.T) {
	r := NewRecoverer(nil)

	rec := r.ExtractPartial("completely unrelated text with no invoice fields", errors.New("boom"))

	meta := rec.Metadata
	require.NotNil(t, meta)
	assert.False(t, meta.Usable)
	assert.Equal(t, 0.0, meta.Confidence["order_number"])
	assert.Equal(t, 0.0, meta.Confidence["order_date"])

	fields := map[string]string{}
	for _, fe := range meta.Errors {
		fields[fe.Field] = fe.Type
	}
	assert.Equal(t, entity.FieldNotFound, fields["order_number"])
	assert.Equal(t, entity.FieldNotFound, fields["order_date"])
}

func TestExtractPartialOverallMean(t *testing.T) {
	r := NewRecoverer(nil)

	// Order number and date present, total and currency absent: the
	// overall confidence is the mean of the four field confidences.
	text := "Order #: 113-4567890-1234567 placed 2023-12-15"
	rec := r.ExtractPartial(text, nil)
	assert.InDelta(t, 0.5, rec.Metadata.Confidence["overall"], 0.0001)
	assert.True(t, rec.Metadata.Usable)
}

func TestSuggestionsOrdering(t *testing.T) {
	r := NewRecoverer(nil)
	partial := r.ExtractPartial("Bestellnummer: 302-1234567-1234567 vom 15.12.2023 Gesamtsumme: 57,10 €", nil)

	catErr := Categorize(errors.New("failed to extract items"), "x")
	sugs := Suggestions(catErr, partial)
	require.NotEmpty(t, sugs)
	assert.Equal(t, "use_partial_data", sugs[0].Action)
	assert.Equal(t, 1, sugs[0].Priority)

	fatal := Categorize(errors.New("open x: permission denied"), "x")
	sugs = Suggestions(fatal, nil)
	require.Len(t, sugs, 2)
	assert.Equal(t, "check_permissions", sugs[0].Action)
	assert.Equal(t, "verify_path", sugs[1].Action)

	unknown := Categorize(errors.New("weird"), "x")
	sugs = Suggestions(unknown, nil)
	require.NotEmpty(t, sugs)
	assert.Equal(t, "use_extracted_data", sugs[len(sugs)-1].Action)
}
