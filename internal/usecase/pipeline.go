package usecase

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Registries are the read-only tables the pipeline is built from
type Registries struct {
	Brands     *domain.BrandRegistry
	Categories *domain.CategoryRegistry
	Patterns   *domain.PatternRegistry
}

// PipelineConfig tunes matching thresholds and batch parallelism. Zero values
// select the defaults.
type PipelineConfig struct {
	BrandFuzzyThreshold       float64
	DuplicateFuzzyThreshold   float64
	HardDuplicateThreshold    float64
	MaxDuplicateCandidates    int
	CategoryConfidenceDivisor float64
	ReviewConfidenceFloor     float64
	Workers                   int
	EnableDebugLogging        bool
}

// BatchOptions describe one batch run
type BatchOptions struct {
	Mode       domain.Mode
	SourceFile string

	// Progress is called after each record with the number done so far. It is
	// called from several goroutines.
	Progress func(done, total int)
}

// Pipeline turns part inputs into ingestion records. All components are
// immutable after construction, so one pipeline serves concurrent callers.
type Pipeline struct {
	names      *NameNormalizer
	brands     *BrandResolver
	categories *CategoryResolver
	extractor  *ExtractionEngine
	validator  *SchemaValidator
	duplicates *DuplicateResolver

	config PipelineConfig
	now    func() time.Time
}

// NewPipeline wires every component from the registries. comparison is the
// existing catalog used for duplicate detection and may be empty.
func NewPipeline(registries Registries, comparison []domain.CatalogEntry, config PipelineConfig) *Pipeline {
	brandRegistry := registries.Brands
	if brandRegistry != nil && config.BrandFuzzyThreshold > 0 {
		copied := *brandRegistry
		copied.FuzzyThreshold = config.BrandFuzzyThreshold
		brandRegistry = &copied
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	p := &Pipeline{
		names:      NewNameNormalizer(true),
		brands:     NewBrandResolver(brandRegistry),
		categories: NewCategoryResolver(registries.Categories, config.CategoryConfidenceDivisor),
		extractor:  NewExtractionEngine(registries.Patterns),
		validator:  NewSchemaValidator(registries.Categories),
		config:     config,
		now:        time.Now,
	}
	p.duplicates = p.newDuplicateResolver(comparison)
	return p
}

// WithComparisonSet returns a pipeline sharing every component except the
// duplicate index, which is rebuilt from entries.
func (p *Pipeline) WithComparisonSet(entries []domain.CatalogEntry) *Pipeline {
	clone := *p
	clone.duplicates = p.newDuplicateResolver(entries)
	return &clone
}

func (p *Pipeline) newDuplicateResolver(entries []domain.CatalogEntry) *DuplicateResolver {
	return NewDuplicateResolver(entries, DuplicateConfig{
		FuzzyThreshold:         p.config.DuplicateFuzzyThreshold,
		HardDuplicateThreshold: p.config.HardDuplicateThreshold,
		MaxCandidates:          p.config.MaxDuplicateCandidates,
		EnableDebugLogging:     p.config.EnableDebugLogging,
	})
}

// Brands exposes the brand resolver
func (p *Pipeline) Brands() *BrandResolver { return p.brands }

// Names exposes the name normalizer
func (p *Pipeline) Names() *NameNormalizer { return p.names }

// Categories exposes the category resolver
func (p *Pipeline) Categories() *CategoryResolver { return p.categories }

// Extractor exposes the extraction engine
func (p *Pipeline) Extractor() *ExtractionEngine { return p.extractor }

// Validator exposes the schema validator
func (p *Pipeline) Validator() *SchemaValidator { return p.validator }

// Process runs one record through every stage and decides its status.
// Records without a category (supplied or suggested) skip schema validation
// and go to review through their zero category confidence.
func (p *Pipeline) Process(input domain.PartInput) domain.IngestionRecord {
	name := p.names.Normalize(input.Name)
	brand := p.brands.Resolve(input.Brand)
	category := p.categories.Resolve(input.Name, input.Description, input.Category)
	extraction := p.extractor.Extract(input.Name, input.Description, input.Attributes)

	validation := domain.ValidationResult{
		IsValid:           true,
		Issues:            []domain.ValidationIssue{},
		ValidatedMetadata: extraction.Metadata.Clone(),
	}
	if category.Slug != "" {
		validation = p.validator.Validate(category.Slug, extraction.Metadata)
	}

	duplicates := p.duplicates.Find(input.Name, input.Brand, input.SKU)

	status, reasons := ResolveDisposition(DispositionInput{
		Brand:           brand,
		Category:        category,
		Extraction:      extraction,
		Validation:      validation,
		HardDuplicate:   p.duplicates.IsHardDuplicate(duplicates),
		ConfidenceFloor: p.config.ReviewConfidenceFloor,
	})

	original := input.Original
	if original == nil {
		original = rowFromInput(input)
	}

	return domain.IngestionRecord{
		OriginalData: original,
		NormalizedData: domain.NormalizedData{
			Name:        name,
			Brand:       brand,
			Category:    category,
			SKU:         input.SKU,
			Description: input.Description,
			Price:       input.Price,
		},
		ExtractedSpecs: extraction,
		Validation:     validation,
		Duplicates:     duplicates,
		Status:         status,
		ReviewReasons:  reasons,
		RowNumber:      input.RowNumber,
	}
}

// ProcessBatch processes inputs in parallel and returns them in input order
// with per-status counts. Cancelling ctx stops the batch between records.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs []domain.PartInput, opts BatchOptions) (*domain.BatchReport, error) {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeDryRun
	}

	now := p.now()
	report := &domain.BatchReport{
		BatchID:    NewBatchID(now),
		Timestamp:  now,
		Mode:       mode,
		SourceFile: opts.SourceFile,
		Records:    make([]domain.IngestionRecord, len(inputs)),
	}

	var done int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			input := inputs[i]
			if input.RowNumber == 0 {
				input.RowNumber = i + 1
			}
			record := p.Process(input)
			record.SourceFile = opts.SourceFile
			report.Records[i] = record

			n := atomic.AddInt64(&done, 1)
			if opts.Progress != nil {
				opts.Progress(int(n), len(inputs))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range report.Records {
		report.Statistics.Count(r.Status)
	}
	return report, nil
}

// NewBatchID formats a sortable batch id: YYYYMMDD-HHMMSS-<8 hex chars>
func NewBatchID(t time.Time) string {
	return t.Format("20060102-150405") + "-" + uuid.NewString()[:8]
}

func rowFromInput(input domain.PartInput) domain.Row {
	row := domain.Row{}
	for key, value := range map[string]string{
		"name":        input.Name,
		"brand":       input.Brand,
		"description": input.Description,
		"category":    input.Category,
		"sku":         input.SKU,
		"price":       input.Price,
	} {
		if value != "" {
			row[key] = value
		}
	}
	for _, key := range input.Attributes.Keys() {
		row[key], _ = input.Attributes.Get(key)
	}
	return row
}
