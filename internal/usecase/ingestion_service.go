package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const comparisonSetCacheKey = "catalog:entries"

// IngestionServiceConfig holds configuration for the ingestion service
type IngestionServiceConfig struct {
	// BatchTTL is how long batch reports stay retrievable by id
	BatchTTL time.Duration
	// CatalogTTL is how long a fetched comparison set is reused
	CatalogTTL time.Duration
}

// IngestionDependencies are the adapters the service talks to. Only Cache is
// required; a nil Catalog disables duplicate detection against a remote set,
// a nil Parts store disables commit mode and a nil Indexer skips indexing.
type IngestionDependencies struct {
	Cache   domain.CacheRepository
	Catalog domain.CatalogSource
	Parts   domain.PartRepository
	Indexer domain.SearchIndexer
}

// IngestRequest is one batch submitted for ingestion
type IngestRequest struct {
	Rows     []domain.Row
	Mode     domain.Mode
	Source   string
	Progress func(done, total int)
}

// IngestionService runs batches through the pipeline, keeps their reports
// retrievable and commits ready records.
type IngestionService struct {
	pipeline      *Pipeline
	partValidator *PartValidator
	cache         domain.CacheRepository
	catalog       domain.CatalogSource
	parts         domain.PartRepository
	indexer       domain.SearchIndexer
	batchTTL      time.Duration
	catalogTTL    time.Duration
	now           func() time.Time
	log           *zap.Logger
}

// NewIngestionService creates a new ingestion service with dependencies
func NewIngestionService(
	pipeline *Pipeline,
	deps IngestionDependencies,
	config IngestionServiceConfig,
) *IngestionService {
	batchTTL := config.BatchTTL
	if batchTTL == 0 {
		batchTTL = 24 * time.Hour
	}
	catalogTTL := config.CatalogTTL
	if catalogTTL == 0 {
		catalogTTL = time.Hour
	}

	return &IngestionService{
		pipeline:      pipeline,
		partValidator: NewPartValidator(pipeline.Validator()),
		cache:         deps.Cache,
		catalog:       deps.Catalog,
		parts:         deps.Parts,
		indexer:       deps.Indexer,
		batchTTL:      batchTTL,
		catalogTTL:    catalogTTL,
		now:           time.Now,
		log:           logger.Named("ingestion"),
	}
}

// Pipeline exposes the underlying pipeline for single-stage endpoints
func (s *IngestionService) Pipeline() *Pipeline {
	return s.pipeline
}

// CommitEnabled reports whether a part store is configured
func (s *IngestionService) CommitEnabled() bool {
	return s.parts != nil
}

// ProcessPart runs a single input against the current comparison set
func (s *IngestionService) ProcessPart(ctx context.Context, input domain.PartInput) (domain.IngestionRecord, error) {
	pipeline, err := s.currentPipeline(ctx)
	if err != nil {
		return domain.IngestionRecord{}, err
	}
	return pipeline.Process(input), nil
}

// Ingest maps, processes and (in commit mode) persists a batch of rows.
// Flow: load comparison set -> process batch -> commit ready records -> cache report
func (s *IngestionService) Ingest(ctx context.Context, request *IngestRequest) (*domain.BatchReport, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	mode, err := domain.ParseMode(string(request.Mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if mode == domain.ModeCommit && s.parts == nil {
		return nil, domain.ErrCommitDisabled
	}

	pipeline, err := s.currentPipeline(ctx)
	if err != nil {
		return nil, err
	}

	inputs := make([]domain.PartInput, len(request.Rows))
	for i, row := range request.Rows {
		inputs[i] = MapRow(row)
		inputs[i].RowNumber = i + 1
	}

	report, err := pipeline.ProcessBatch(ctx, inputs, BatchOptions{
		Mode:       mode,
		SourceFile: request.Source,
		Progress:   request.Progress,
	})
	if err != nil {
		return nil, err
	}

	if mode == domain.ModeCommit {
		if err := s.commit(ctx, report); err != nil {
			return nil, err
		}
	}

	if err := s.cache.Set(ctx, batchCacheKey(report.BatchID), report, s.batchTTL); err != nil {
		s.log.Warn("Failed to cache batch report",
			zap.String("batch_id", report.BatchID),
			zap.Error(err),
		)
	}

	s.log.Info("Batch processed",
		zap.String("batch_id", report.BatchID),
		zap.String("mode", string(mode)),
		zap.String("source", request.Source),
		zap.Int("total", report.Statistics.Total),
		zap.Int("ready", report.Statistics.Ready),
		zap.Int("needs_review", report.Statistics.NeedsReview),
		zap.Int("invalid", report.Statistics.Invalid),
		zap.Int("duplicate", report.Statistics.Duplicate),
	)

	return report, nil
}

// GetBatch returns a previously processed batch report
func (s *IngestionService) GetBatch(ctx context.Context, batchID string) (*domain.BatchReport, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	value, err := s.cache.Get(ctx, batchCacheKey(batchID))
	if err != nil {
		return nil, domain.ErrBatchNotFound
	}

	switch v := value.(type) {
	case *domain.BatchReport:
		return v, nil
	case []byte:
		// Remote caches hand back the JSON they stored
		var report domain.BatchReport
		if err := json.Unmarshal(v, &report); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBatchNotFound, err)
		}
		return &report, nil
	}
	return nil, domain.ErrBatchNotFound
}

// currentPipeline returns the pipeline bound to the catalog's comparison set.
// Without a catalog the pipeline is used as constructed.
func (s *IngestionService) currentPipeline(ctx context.Context) (*Pipeline, error) {
	if s.catalog == nil {
		return s.pipeline, nil
	}
	entries, err := s.comparisonSet(ctx)
	if err != nil {
		return nil, err
	}
	return s.pipeline.WithComparisonSet(entries), nil
}

// comparisonSet is cache-first: cache -> catalog -> cache
func (s *IngestionService) comparisonSet(ctx context.Context) ([]domain.CatalogEntry, error) {
	if value, err := s.cache.Get(ctx, comparisonSetCacheKey); err == nil {
		switch v := value.(type) {
		case []domain.CatalogEntry:
			return v, nil
		case []byte:
			var entries []domain.CatalogEntry
			if err := json.Unmarshal(v, &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.catalog.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	if err := s.cache.Set(ctx, comparisonSetCacheKey, entries, s.catalogTTL); err != nil {
		s.log.Warn("Failed to cache comparison set", zap.Error(err))
	}
	return entries, nil
}

// commit persists every ready record that passes the part validator and
// indexes what was saved. Indexing failures do not fail the batch.
func (s *IngestionService) commit(ctx context.Context, report *domain.BatchReport) error {
	now := s.now()
	var parts []domain.CommittedPart

	for _, record := range report.RecordsWithStatus(domain.StatusReady) {
		data := domain.PartData{
			Name:       record.NormalizedData.Name.Normalized,
			CategoryID: record.NormalizedData.Category.Slug,
			Metadata:   record.Validation.ValidatedMetadata,
		}
		if result := s.partValidator.ValidatePart(data); !result.IsValid {
			s.log.Warn("Skipping ready record that fails part validation",
				zap.Int("row", record.RowNumber),
				zap.Int("errors", len(result.Errors())),
			)
			continue
		}

		parts = append(parts, domain.CommittedPart{
			ID:          uuid.NewString(),
			BatchID:     report.BatchID,
			Name:        data.Name,
			Slug:        record.NormalizedData.Name.Slug,
			Brand:       record.NormalizedData.Brand.Canonical,
			BrandSlug:   record.NormalizedData.Brand.Slug,
			Category:    data.CategoryID,
			SKU:         record.NormalizedData.SKU,
			Price:       record.NormalizedData.Price,
			Description: record.NormalizedData.Description,
			Metadata:    data.Metadata,
			CreatedAt:   now,
		})
	}

	if len(parts) == 0 {
		return nil
	}

	if err := s.parts.SaveParts(ctx, parts); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// The store may also be the catalog, so the cached set is now stale
	if err := s.cache.Delete(ctx, comparisonSetCacheKey); err != nil {
		s.log.Warn("Failed to invalidate cached comparison set",
			zap.String("batch_id", report.BatchID),
			zap.Error(err),
		)
	}

	ids := make([]string, len(parts))
	for i, p := range parts {
		ids[i] = p.ID
	}
	report.CommittedIDs = ids

	if s.indexer != nil {
		if err := s.indexer.IndexParts(ctx, parts); err != nil {
			s.log.Warn("Failed to index committed parts",
				zap.String("batch_id", report.BatchID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func batchCacheKey(batchID string) string {
	return "batch:" + batchID
}
