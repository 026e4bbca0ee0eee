package usecase

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

// DefaultCategoryConfidenceDivisor turns an accumulated keyword score into a confidence
const DefaultCategoryConfidenceDivisor = 20.0

type categoryKeyword struct {
	keyword  string
	category int
}

// CategoryResolver suggests categories from keyword hits and checks supplied
// category slugs against the registry.
type CategoryResolver struct {
	registry *domain.CategoryRegistry
	keywords []categoryKeyword
	divisor  float64
}

// NewCategoryResolver builds the keyword table in registry order. A keyword
// listed by several categories belongs to the first one.
func NewCategoryResolver(registry *domain.CategoryRegistry, divisor float64) *CategoryResolver {
	if divisor <= 0 {
		divisor = DefaultCategoryConfidenceDivisor
	}
	r := &CategoryResolver{registry: registry, divisor: divisor}
	if registry == nil {
		return r
	}

	seen := make(map[string]bool)
	for i, schema := range registry.Categories {
		for _, kw := range schema.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			r.keywords = append(r.keywords, categoryKeyword{keyword: kw, category: i})
		}
	}
	return r
}

// Resolve validates category when one is supplied and suggests one otherwise
func (r *CategoryResolver) Resolve(name, description, category string) domain.CategoryResult {
	if strings.TrimSpace(category) == "" {
		return r.Suggest(name, description)
	}
	return r.Validate(category)
}

// Suggest scores every category by the summed length of its keywords found
// in name and description. The highest score wins; ties go to the category
// listed first. No hit yields an empty slug with zero confidence.
func (r *CategoryResolver) Suggest(name, description string) domain.CategoryResult {
	if r.registry == nil {
		return domain.CategoryResult{Suggested: true}
	}
	text := strings.ToLower(name + " " + description)

	scores := make(map[int]int)
	for _, kw := range r.keywords {
		if strings.Contains(text, kw.keyword) {
			scores[kw.category] += utf8.RuneCountInString(kw.keyword)
		}
	}

	best, bestScore := -1, 0
	for i := range r.registry.Categories {
		if s := scores[i]; s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return domain.CategoryResult{Suggested: true}
	}

	return domain.CategoryResult{
		Slug:       r.registry.Categories[best].Slug,
		Confidence: math.Min(float64(bestScore)/r.divisor, 1.0),
		Suggested:  true,
	}
}

// Validate slugifies a caller-supplied category. Unknown slugs are kept but
// carry a reduced confidence.
func (r *CategoryResolver) Validate(category string) domain.CategoryResult {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(category)), " ", "-")
	confidence := 0.5
	if r.registry.Has(slug) {
		confidence = 1.0
	}
	return domain.CategoryResult{Slug: slug, Confidence: confidence}
}
