package usecase

import (
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

// DefaultBrandFuzzyThreshold is the minimum similarity for a fuzzy brand match
const DefaultBrandFuzzyThreshold = 0.85

type aliasTarget struct {
	alias string
	brand domain.BrandIdentity
}

// BrandResolver maps free-text brand strings to canonical brands.
// It is read-only after construction and safe for concurrent use.
type BrandResolver struct {
	aliases   []aliasTarget
	index     map[string]int
	unknown   domain.BrandIdentity
	threshold float64
}

// NewBrandResolver builds the alias index from registry. When two brands share
// a normalized alias the later brand owns it, at the alias's first position.
func NewBrandResolver(registry *domain.BrandRegistry) *BrandResolver {
	r := &BrandResolver{
		index:     make(map[string]int),
		threshold: DefaultBrandFuzzyThreshold,
	}
	if registry == nil {
		return r
	}

	r.unknown = registry.Unknown
	if registry.FuzzyThreshold > 0 {
		r.threshold = registry.FuzzyThreshold
	}

	for _, brand := range registry.Brands {
		identity := domain.BrandIdentity{Canonical: brand.Canonical, Slug: brand.Slug}
		for _, alias := range brand.Aliases {
			key := NormalizeForMatching(alias)
			if i, exists := r.index[key]; exists {
				r.aliases[i].brand = identity
				continue
			}
			r.index[key] = len(r.aliases)
			r.aliases = append(r.aliases, aliasTarget{alias: key, brand: identity})
		}
	}

	return r
}

// Threshold returns the fuzzy acceptance threshold in use
func (r *BrandResolver) Threshold() float64 {
	return r.threshold
}

// Resolve maps text to a canonical brand. Exact alias hits are trusted; fuzzy
// hits are returned matched but flagged for review.
func (r *BrandResolver) Resolve(text string) domain.BrandMatch {
	if strings.TrimSpace(text) == "" {
		return r.unknownMatch(text, domain.ReasonEmptyInput, 0)
	}

	normalized := NormalizeForMatching(text)

	if i, ok := r.index[normalized]; ok {
		target := r.aliases[i]
		return domain.BrandMatch{
			Canonical: target.brand.Canonical,
			Slug:      target.brand.Slug,
			Original:  text,
			Matched:   true,
			MatchType: domain.MatchExact,
			Score:     1.0,
		}
	}

	best, score := r.fuzzyMatch(normalized)
	if best != nil {
		return domain.BrandMatch{
			Canonical:   best.brand.Canonical,
			Slug:        best.brand.Slug,
			Original:    text,
			Matched:     true,
			MatchType:   domain.MatchFuzzy,
			Score:       score,
			NeedsReview: true,
		}
	}

	return r.unknownMatch(text, domain.ReasonNoMatch, score)
}

// fuzzyMatch scans every alias in registry order. Only a strictly higher score
// replaces the current best, so ties keep the first alias seen. The best score
// is returned even when nothing reaches the threshold.
func (r *BrandResolver) fuzzyMatch(normalized string) (*aliasTarget, float64) {
	var best *aliasTarget
	bestScore := 0.0
	topScore := 0.0

	for i := range r.aliases {
		score := SequenceRatio(normalized, r.aliases[i].alias)
		if score > topScore {
			topScore = score
		}
		if score > bestScore && score >= r.threshold {
			bestScore = score
			best = &r.aliases[i]
		}
	}

	if best != nil {
		return best, bestScore
	}
	return nil, topScore
}

func (r *BrandResolver) unknownMatch(text, reason string, score float64) domain.BrandMatch {
	return domain.BrandMatch{
		Canonical:   r.unknown.Canonical,
		Slug:        r.unknown.Slug,
		Original:    text,
		Matched:     false,
		MatchType:   domain.MatchNone,
		Score:       score,
		NeedsReview: true,
		Reason:      reason,
	}
}
