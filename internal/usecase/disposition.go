package usecase

import "github.com/MadeByDW91/gokartpartpicker.com/internal/domain"

// DefaultReviewConfidenceFloor is the category confidence below which a record goes to review
const DefaultReviewConfidenceFloor = 0.7

// DispositionInput gathers the per-record findings the disposition depends on
type DispositionInput struct {
	Brand         domain.BrandMatch
	Category      domain.CategoryResult
	Extraction    *domain.ExtractionReport
	Validation    domain.ValidationResult
	HardDuplicate bool

	// ConfidenceFloor overrides DefaultReviewConfidenceFloor when positive
	ConfidenceFloor float64
}

// ResolveDisposition decides a record's terminal status. Rules apply in order
// and the first that holds wins: invalid, duplicate, needs_review, ready.
// Review reasons are only collected for duplicate and needs_review.
func ResolveDisposition(in DispositionInput) (domain.Status, []string) {
	reasons := []string{}

	if !in.Validation.IsValid {
		return domain.StatusInvalid, reasons
	}

	if in.HardDuplicate {
		return domain.StatusDuplicate, append(reasons, domain.ReasonDuplicate)
	}

	floor := in.ConfidenceFloor
	if floor <= 0 {
		floor = DefaultReviewConfidenceFloor
	}

	extractionReview := in.Extraction != nil && in.Extraction.NeedsReview
	lowConfidence := in.Category.Confidence < floor

	if !in.Brand.NeedsReview && !extractionReview && !in.Validation.NeedsReview && !lowConfidence {
		return domain.StatusReady, reasons
	}

	if in.Brand.NeedsReview {
		reason := in.Brand.Reason
		if reason == "" {
			reason = domain.ReasonBrandIssue
		}
		reasons = append(reasons, reason)
	}
	if extractionReview {
		reasons = append(reasons, in.Extraction.ReviewReasons...)
	}
	if lowConfidence {
		reasons = append(reasons, domain.ReasonLowCategoryConfidence)
	}

	return domain.StatusNeedsReview, reasons
}
