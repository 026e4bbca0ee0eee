package domain

import (
	"fmt"
	"time"
)

// Row is one loosely structured input record as read from a file or request
type Row map[string]interface{}

// PartInput is the column-resolved input of the per-record pipeline
type PartInput struct {
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	SKU         string    `json:"sku,omitempty"`
	Price       string    `json:"price,omitempty"`
	Attributes  *Metadata `json:"attributes,omitempty"`

	// Original is the untouched source row, carried into the record for reports
	Original  Row `json:"-"`
	RowNumber int `json:"-"`
}

// Status is the terminal disposition of a record
type Status string

const (
	StatusReady       Status = "ready"
	StatusNeedsReview Status = "needs_review"
	StatusInvalid     Status = "invalid"
	StatusDuplicate   Status = "duplicate"
)

// Disposition review reasons
const (
	ReasonDuplicate             = "duplicate_detected"
	ReasonBrandIssue            = "brand_issue"
	ReasonLowCategoryConfidence = "low_category_confidence"
)

// Mode selects what an ingestion run does with ready records
type Mode string

const (
	ModeDryRun     Mode = "dry-run"
	ModeCommit     Mode = "commit"
	ModeReportOnly Mode = "report-only"
)

// ParseMode validates a mode string
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDryRun, ModeCommit, ModeReportOnly:
		return Mode(s), nil
	case "":
		return ModeDryRun, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// NormalizedData is the cleaned identity of a record
type NormalizedData struct {
	Name        NameResult     `json:"name"`
	Brand       BrandMatch     `json:"brand"`
	Category    CategoryResult `json:"category"`
	SKU         string         `json:"sku"`
	Description string         `json:"description"`
	Price       string         `json:"price"`
}

// IngestionRecord is the terminal unit of work for one input record
type IngestionRecord struct {
	OriginalData   Row                  `json:"original_data"`
	NormalizedData NormalizedData       `json:"normalized_data"`
	ExtractedSpecs *ExtractionReport    `json:"extracted_specs"`
	Validation     ValidationResult     `json:"validation_result"`
	Duplicates     []DuplicateCandidate `json:"duplicates,omitempty"`
	Status         Status               `json:"status"`
	ReviewReasons  []string             `json:"review_reasons"`
	RowNumber      int                  `json:"row_number,omitempty"`
	SourceFile     string               `json:"source_file,omitempty"`
}

// BatchStatistics counts records per disposition
type BatchStatistics struct {
	Total       int `json:"total"`
	Ready       int `json:"ready"`
	NeedsReview int `json:"needs_review"`
	Invalid     int `json:"invalid"`
	Duplicate   int `json:"duplicate"`
}

// Count adds one record with status s
func (s *BatchStatistics) Count(status Status) {
	s.Total++
	switch status {
	case StatusReady:
		s.Ready++
	case StatusNeedsReview:
		s.NeedsReview++
	case StatusInvalid:
		s.Invalid++
	case StatusDuplicate:
		s.Duplicate++
	}
}

// BatchReport is the outcome of one ingestion run
type BatchReport struct {
	BatchID      string            `json:"batch_id"`
	Timestamp    time.Time         `json:"timestamp"`
	Mode         Mode              `json:"mode"`
	SourceFile   string            `json:"source_file,omitempty"`
	Statistics   BatchStatistics   `json:"statistics"`
	Records      []IngestionRecord `json:"records"`
	CommittedIDs []string          `json:"committed_ids,omitempty"`
}

// ExitCode maps the batch outcome to a process exit status:
// 2 when anything is invalid, 1 when anything needs review, 0 otherwise.
func (b *BatchReport) ExitCode() int {
	switch {
	case b.Statistics.Invalid > 0:
		return 2
	case b.Statistics.NeedsReview > 0:
		return 1
	}
	return 0
}

// RecordsWithStatus returns the records whose status is one of statuses, in batch order
func (b *BatchReport) RecordsWithStatus(statuses ...Status) []IngestionRecord {
	var out []IngestionRecord
	for _, r := range b.Records {
		for _, s := range statuses {
			if r.Status == s {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// PartData is a fully assembled part as it would be written to the catalog
type PartData struct {
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	Metadata   *Metadata `json:"metadata"`
}

// CommittedPart is a ready record persisted to the part store
type CommittedPart struct {
	ID          string    `json:"id"`
	BatchID     string    `json:"batch_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Brand       string    `json:"brand"`
	BrandSlug   string    `json:"brand_slug"`
	Category    string    `json:"category"`
	SKU         string    `json:"sku,omitempty"`
	Price       string    `json:"price,omitempty"`
	Description string    `json:"description,omitempty"`
	Metadata    *Metadata `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}
