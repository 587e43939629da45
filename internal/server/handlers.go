// Package server is the HTTP collaborator surface over the extraction
// pipeline. Invalid and partially recovered invoices are successful
// responses with an explicit status, so downstream tooling can route
// them to manual review instead of trusting the numbers.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/common"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/pipeline"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/store"
)

// Result statuses surfaced to API clients.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

const maxBatchSize = 100

// Handler serves the extraction API. The store is optional; result
// persistence and lookup are only wired when one is configured.
type Handler struct {
	proc   *pipeline.Processor
	queue  *pipeline.Queue
	store  store.Store
	logger *slog.Logger
}

func NewHandler(proc *pipeline.Processor, queue *pipeline.Queue, st store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{proc: proc, queue: queue, store: st, logger: logger}
}

// ExtractRequest is one invoice text to extract. ID is the caller's
// correlation identifier and may be empty. Format and Language
// optionally force the parser choice instead of classifying and
// detecting; any synonym the constants package canonicalizes is
// accepted.
type ExtractRequest struct {
	ID       string `json:"id"`
	Text     string `json:"text" binding:"required"`
	Format   string `json:"format,omitempty"`
	Language string `json:"language,omitempty"`
}

// toPipelineRequest canonicalizes the optional overrides, rejecting
// values outside the supported sets.
func toPipelineRequest(req ExtractRequest) (pipeline.Request, error) {
	pr := pipeline.Request{ID: req.ID, RawText: req.Text}
	if req.Format != "" {
		f, ok := constants.CanonicalFormat(req.Format)
		if !ok {
			return pr, fmt.Errorf("unknown format %q, supported: %s",
				req.Format, strings.Join(constants.Formats(), ", "))
		}
		pr.Format = string(f)
	}
	if req.Language != "" {
		l, ok := constants.CanonicalLanguage(req.Language)
		if !ok {
			return pr, fmt.Errorf("unknown language %q, supported: %s",
				req.Language, strings.Join(constants.Languages(), ", "))
		}
		pr.Language = string(l)
	}
	return pr, nil
}

// ExtractResponse is the API shape of one pipeline result.
type ExtractResponse struct {
	ID          string                   `json:"id"`
	Status      string                   `json:"status"`
	Invoice     *entity.InvoiceRecord    `json:"invoice,omitempty"`
	Error       *entity.CategorizedError `json:"error,omitempty"`
	Suggestions []entity.Suggestion      `json:"suggestions,omitempty"`
}

// BatchExtractRequest carries up to 100 invoice texts.
type BatchExtractRequest struct {
	Invoices []ExtractRequest `json:"invoices" binding:"required,min=1,max=100"`
}

// BatchExtractResponse summarizes a batch run.
type BatchExtractResponse struct {
	Results   []ExtractResponse `json:"results"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Partial   int               `json:"partial"`
	Invalid   int               `json:"invalid"`
	Failed    int               `json:"failed"`
}

func toResponse(res pipeline.Result) ExtractResponse {
	return ExtractResponse{
		ID:          res.ID,
		Status:      statusFor(res),
		Invoice:     res.Invoice,
		Error:       res.Err,
		Suggestions: res.Suggestions,
	}
}

func statusFor(res pipeline.Result) string {
	switch {
	case res.Err != nil:
		return StatusFailed
	case res.Invoice == nil:
		return StatusFailed
	case res.Invoice.Metadata != nil:
		return StatusPartial
	case res.Invoice.Validation != nil && !res.Invoice.Validation.IsValid:
		return StatusInvalid
	default:
		return StatusOK
	}
}

// Extract handles POST /api/v1/extract.
func (h *Handler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("server.extract.bad_request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pr, err := toPipelineRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.proc.Process(c.Request.Context(), pr)
	if res.Err != nil {
		c.JSON(http.StatusInternalServerError, toResponse(res))
		return
	}

	h.persist(c, res)
	c.JSON(http.StatusOK, toResponse(res))
}

// ExtractBatch handles POST /api/v1/extract/batch.
func (h *Handler) ExtractBatch(c *gin.Context) {
	var req BatchExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("server.batch.bad_request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Invoices) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}

	reqs := make([]pipeline.Request, len(req.Invoices))
	for i, in := range req.Invoices {
		pr, err := toPipelineRequest(in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reqs[i] = pr
	}
	results := h.queue.ProcessBatch(c.Request.Context(), reqs)

	out := BatchExtractResponse{
		Results: make([]ExtractResponse, len(results)),
		Total:   len(results),
	}
	for i, res := range results {
		resp := toResponse(res)
		out.Results[i] = resp
		switch resp.Status {
		case StatusOK:
			out.Succeeded++
			h.persist(c, res)
		case StatusPartial:
			out.Partial++
			h.persist(c, res)
		case StatusInvalid:
			out.Invalid++
			h.persist(c, res)
		default:
			out.Failed++
		}
	}

	h.logger.Info("server.batch.done",
		"total", out.Total,
		"succeeded", out.Succeeded,
		"partial", out.Partial,
		"invalid", out.Invalid,
		"failed", out.Failed)
	c.JSON(http.StatusOK, out)
}

// GetResult handles GET /api/v1/results/:id.
func (h *Handler) GetResult(c *gin.Context) {
	res, err := h.store.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}
		h.logger.Error("server.results.get", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListResults handles GET /api/v1/results.
func (h *Handler) ListResults(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	results, err := h.store.ListResults(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("server.results.list", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if results == nil {
		results = []*store.StoredResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) persist(c *gin.Context, res pipeline.Result) {
	if h.store == nil || res.Invoice == nil {
		return
	}
	err := h.store.SaveResult(c.Request.Context(), &store.StoredResult{
		ID:      res.ID,
		Invoice: res.Invoice,
	})
	if err != nil {
		// Persistence is best effort; the extraction result still goes
		// back to the caller.
		h.logger.Error("server.persist.failed", "id", res.ID, "error", err)
	}
}

// RequestID assigns every request a correlation ID carried through the
// context into pipeline logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx := common.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
