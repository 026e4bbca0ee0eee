package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/report"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const (
	serviceName = "partingest"
	version     = "1.0.0"

	// maxBatchRows bounds one ingest request
	maxBatchRows = 10000
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	ingestion *usecase.IngestionService
	log       *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil service makes every part
// endpoint answer 503.
func NewHandler(ingestion *usecase.IngestionService) *Handler {
	return &Handler{
		ingestion: ingestion,
		log:       logger.Named("http"),
	}
}

// ProcessPartRequest is a single loosely structured part row
type ProcessPartRequest struct {
	Part domain.Row `json:"part" binding:"required"`
}

// IngestRequest is a batch of rows to run through the pipeline
type IngestRequest struct {
	Rows   []domain.Row `json:"rows" binding:"required,min=1"`
	Mode   string       `json:"mode"`
	Source string       `json:"source"`
}

// IngestResponse is the batch report with summary fields lifted to the top
type IngestResponse struct {
	BatchID    string                 `json:"batch_id"`
	Mode       domain.Mode            `json:"mode"`
	ExitCode   int                    `json:"exit_code"`
	Statistics domain.BatchStatistics `json:"statistics"`
	Report     *domain.BatchReport    `json:"report"`
}

// BrandRequest carries free-text brand input
type BrandRequest struct {
	Brand string `json:"brand"`
}

// NameRequest carries a raw part name
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// CategoryRequest carries the text a category is resolved from
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ExtractRequest carries the text specs are extracted from
type ExtractRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Attributes  *domain.Metadata `json:"attributes"`
}

// ValidateRequest carries metadata to check against a category schema
type ValidateRequest struct {
	Category string           `json:"category" binding:"required"`
	Metadata *domain.Metadata `json:"metadata"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        serviceName,
		"version":        version,
		"commit_enabled": h.ingestion != nil && h.ingestion.CommitEnabled(),
	})
}

// ProcessPart runs one row through the full pipeline without storing anything
func (h *Handler) ProcessPart(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req ProcessPartRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	input := usecase.MapRow(req.Part)
	if strings.TrimSpace(input.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "part name is required"})
		return
	}

	record, err := h.ingestion.ProcessPart(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// IngestBatch processes a batch of rows in the requested mode
func (h *Handler) IngestBatch(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req IngestRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Rows) > maxBatchRows {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "too many rows in one batch",
			"limit": maxBatchRows,
		})
		return
	}

	batch, err := h.ingestion.Ingest(c.Request.Context(), &usecase.IngestRequest{
		Rows:   req.Rows,
		Mode:   domain.Mode(req.Mode),
		Source: orDefault(req.Source, "api"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, IngestResponse{
		BatchID:    batch.BatchID,
		Mode:       batch.Mode,
		ExitCode:   batch.ExitCode(),
		Statistics: batch.Statistics,
		Report:     batch,
	})
}

// GetBatch returns a previously processed batch report
func (h *Handler) GetBatch(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	batch, err := h.ingestion.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// GetBatchAnalysis returns the extraction analysis of a processed batch
func (h *Handler) GetBatchAnalysis(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	batch, err := h.ingestion.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch_id": batch.BatchID,
		"analysis": report.Analyze(batch),
	})
}

// ResolveBrand maps free text to a canonical brand
func (h *Handler) ResolveBrand(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req BrandRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ingestion.Pipeline().Brands().Resolve(req.Brand))
}

// NormalizeName cleans up a part name and derives its slug
func (h *Handler) NormalizeName(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req NameRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ingestion.Pipeline().Names().Normalize(req.Name))
}

// ResolveCategory validates a supplied category or suggests one from the text
func (h *Handler) ResolveCategory(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req CategoryRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ingestion.Pipeline().Categories().Resolve(req.Name, req.Description, req.Category))
}

// ExtractSpecs runs the extraction engine over a name and description
func (h *Handler) ExtractSpecs(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req ExtractRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ingestion.Pipeline().Extractor().Extract(req.Name, req.Description, req.Attributes))
}

// ValidateSpecs checks metadata against a category schema
func (h *Handler) ValidateSpecs(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req ValidateRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = domain.NewMetadata()
	}
	c.JSON(http.StatusOK, h.ingestion.Pipeline().Validator().Validate(req.Category, metadata))
}

// ConvertUnits converts a length value between units. The value may be a
// fraction or mixed number such as "3/4", "1-1/2" or "1 1/2".
func (h *Handler) ConvertUnits(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("value"))
	if fields := strings.Fields(raw); len(fields) == 2 && strings.Contains(fields[1], "/") {
		raw = fields[0] + "-" + fields[1]
	}
	from := c.Query("from")
	to := c.Query("to")
	if raw == "" || from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value, from and to are required"})
		return
	}

	value, ok := usecase.ParseFraction(raw)
	if !ok {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value is not a number or fraction"})
			return
		}
		value = parsed
	}

	converted, ok := usecase.ConvertUnit(value, from, to)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unsupported unit conversion",
			"from":  usecase.NormalizeUnit(from),
			"to":    usecase.NormalizeUnit(to),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"value":     value,
		"from":      usecase.NormalizeUnit(from),
		"to":        usecase.NormalizeUnit(to),
		"converted": converted,
	})
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.ingestion == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion service not configured"})
		return false
	}
	return true
}

// respondError maps domain errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownMode):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCommitDisabled):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrCatalogUnavailable), errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			zap.String("request_id", c.GetString(logger.RequestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the body keeping numbers as json.Number so integer specs
// stay integers, then runs the binding validators.
func bindJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid request body",
		"details": err.Error(),
	})
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
