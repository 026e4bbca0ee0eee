package domain

// Extraction sources
const (
	SourceName         = "name"
	SourceDerived      = "derived"
	SourceExplicit     = "explicit"
	SourceEngineFamily = "engine_family_inference"
)

// ExtractionResult is one confidence-scored attribute value
type ExtractionResult struct {
	Field          string      `json:"field"`
	Value          interface{} `json:"value"`
	Confidence     float64     `json:"confidence"`
	Source         string      `json:"source"`
	PatternMatched string      `json:"pattern_matched,omitempty"`
	RawMatch       string      `json:"raw_match,omitempty"`
	NeedsReview    bool        `json:"needs_review,omitempty"`
	ReviewReason   string      `json:"review_reason,omitempty"`
}

// ExtractionReport aggregates every extraction for one record
type ExtractionReport struct {
	Metadata               *Metadata          `json:"metadata"`
	Extractions            []ExtractionResult `json:"extractions"`
	EngineFamily           string             `json:"engine_family,omitempty"`
	EngineFamilyConfidence float64            `json:"engine_family_confidence"`
	NeedsReview            bool               `json:"needs_review"`
	ReviewReasons          []string           `json:"review_reasons"`
}

// NewExtractionReport creates an empty report
func NewExtractionReport() *ExtractionReport {
	return &ExtractionReport{
		Metadata:      NewMetadata(),
		Extractions:   []ExtractionResult{},
		ReviewReasons: []string{},
	}
}

// Add records result and writes its value into the metadata (last write wins)
func (r *ExtractionReport) Add(result ExtractionResult) {
	r.Extractions = append(r.Extractions, result)
	if result.Field != "" {
		r.Metadata.Set(result.Field, result.Value)
	}
	if result.NeedsReview {
		r.NeedsReview = true
		if result.ReviewReason != "" {
			r.ReviewReasons = append(r.ReviewReasons, result.ReviewReason)
		}
	}
}
