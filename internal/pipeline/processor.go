// Package pipeline wires the extraction stages together: normalize,
// classify, detect language, select a parser, extract, and recover on
// failure. Processing one invoice is pure and synchronous; batches run
// on the bounded worker queue.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/classify"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/language"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/parser"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/preprocess"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/recovery"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/validate"
)

// Request is one invoice text to process. ID is the caller's opaque
// correlation identifier; an empty ID is filled with a fresh UUID.
// Format and Language are optional overrides (any synonym accepted by
// constants.CanonicalFormat/CanonicalLanguage); when set they bypass
// classification and detection for that stage.
type Request struct {
	ID       string `json:"id"`
	RawText  string `json:"raw_text"`
	Format   string `json:"format,omitempty"`
	Language string `json:"language,omitempty"`
}

// Result carries either an InvoiceRecord or a critical CategorizedError,
// never both. Recoverable failures still produce an invoice, with the
// recovery metadata attached.
type Result struct {
	ID          string                   `json:"id"`
	Invoice     *entity.InvoiceRecord    `json:"invoice,omitempty"`
	Err         *entity.CategorizedError `json:"error,omitempty"`
	Suggestions []entity.Suggestion      `json:"suggestions,omitempty"`
}

// Processor runs the full extraction pipeline for one invoice at a
// time. It holds no per-invoice state and is safe for concurrent use.
type Processor struct {
	normalizer *preprocess.Normalizer
	classifier *classify.Classifier
	detector   *language.Detector
	registry   *parser.Registry
	recoverer  *recovery.Recoverer
	log        *slog.Logger
}

func NewProcessor(policy validate.Policy, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		normalizer: preprocess.NewNormalizer(),
		classifier: classify.NewClassifier(log),
		detector:   language.NewDetector(log),
		registry:   parser.NewRegistry(parser.Deps{Log: log, Policy: policy}),
		recoverer:  recovery.NewRecoverer(log),
		log:        log,
	}
}

// Process runs one invoice through the pipeline. ctx is consulted
// between stages for cancellation only; the stages themselves never
// block.
func (p *Processor) Process(ctx context.Context, req Request) Result {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := ctx.Err(); err != nil {
		return Result{ID: req.ID, Err: cancelled(req.ID, err)}
	}

	text := p.normalizer.Normalize(req.RawText)

	format, forced := constants.CanonicalFormat(req.Format)
	if !forced {
		format = p.classifier.Classify(text).Format
	}
	lang, forced := constants.CanonicalLanguage(req.Language)
	if !forced {
		lang = p.detector.Detect(text).Language
	}

	if err := ctx.Err(); err != nil {
		return Result{ID: req.ID, Err: cancelled(req.ID, err)}
	}

	psr := p.registry.Select(format, lang)
	rec, err := psr.Extract(text)
	if err == nil {
		p.log.Info("pipeline.extract.ok",
			"id", req.ID,
			"format", string(format),
			"language", string(lang),
			"is_valid", rec.Validation != nil && rec.Validation.IsValid)
		return Result{ID: req.ID, Invoice: rec}
	}

	catErr := recovery.Categorize(err, req.ID)
	if !catErr.Recoverable {
		p.log.Error("pipeline.extract.failed",
			"id", req.ID,
			"category", string(catErr.Type),
			"error", err)
		return Result{ID: req.ID, Err: catErr}
	}

	partial := p.recoverer.ExtractPartial(req.RawText, err)
	partial.Format = format
	partial.Language = lang
	p.log.Warn("pipeline.extract.recovered",
		"id", req.ID,
		"category", string(catErr.Type),
		"usable", partial.Metadata.Usable)
	return Result{
		ID:          req.ID,
		Invoice:     partial,
		Suggestions: recovery.Suggestions(catErr, partial),
	}
}

func cancelled(id string, err error) *entity.CategorizedError {
	catErr := entity.NewCategorizedError(constants.UnknownError,
		"processing cancelled", id, err)
	catErr.Recoverable = false
	return catErr
}
