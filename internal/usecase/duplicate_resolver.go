package usecase

import (
	"sort"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"go.uber.org/zap"
)

// Duplicate detection defaults
const (
	DefaultDuplicateFuzzyThreshold = 0.85
	DefaultHardDuplicateThreshold  = 0.95
	DefaultMaxDuplicateCandidates  = 5
)

// DuplicateConfig holds configuration for the duplicate resolver
type DuplicateConfig struct {
	FuzzyThreshold         float64
	HardDuplicateThreshold float64
	MaxCandidates          int
	EnableDebugLogging     bool
}

// DuplicateResolver finds near-duplicates of incoming parts in a comparison
// set. It is read-only after construction and safe for concurrent use.
type DuplicateResolver struct {
	entries []domain.CatalogEntry
	index   map[string][]int
	names   []string // normalized names in first-seen order

	fuzzyThreshold float64
	hardThreshold  float64
	maxCandidates  int
	debug          bool
}

// NewDuplicateResolver indexes entries by normalized name. Entries whose name
// normalizes to nothing are not indexed.
func NewDuplicateResolver(entries []domain.CatalogEntry, config DuplicateConfig) *DuplicateResolver {
	r := &DuplicateResolver{
		entries:        entries,
		index:          make(map[string][]int),
		fuzzyThreshold: config.FuzzyThreshold,
		hardThreshold:  config.HardDuplicateThreshold,
		maxCandidates:  config.MaxCandidates,
		debug:          config.EnableDebugLogging,
	}
	if r.fuzzyThreshold <= 0 {
		r.fuzzyThreshold = DefaultDuplicateFuzzyThreshold
	}
	if r.hardThreshold <= 0 {
		r.hardThreshold = DefaultHardDuplicateThreshold
	}
	if r.maxCandidates <= 0 {
		r.maxCandidates = DefaultMaxDuplicateCandidates
	}

	for i, entry := range entries {
		key := NormalizeForMatching(entry.Name)
		if key == "" {
			continue
		}
		if _, seen := r.index[key]; !seen {
			r.names = append(r.names, key)
		}
		r.index[key] = append(r.index[key], i)
	}

	return r
}

// Len returns the number of entries in the comparison set
func (r *DuplicateResolver) Len() int {
	return len(r.entries)
}

// Find returns up to MaxCandidates entries resembling name, best first. Exact
// normalized matches score 1.0; other names must score strictly above the fuzzy
// threshold. Matching is by name only; brand and sku are accepted so callers
// can pass whatever identity they have.
func (r *DuplicateResolver) Find(name, brand, sku string) []domain.DuplicateCandidate {
	query := NormalizeForMatching(name)
	if query == "" {
		return nil
	}

	var candidates []domain.DuplicateCandidate

	for _, i := range r.index[query] {
		candidates = append(candidates, r.candidate(i, 1.0, domain.MatchExact))
	}

	for _, existing := range r.names {
		if existing == query {
			continue
		}
		similarity := SequenceRatio(query, existing)
		if similarity <= r.fuzzyThreshold {
			continue
		}
		for _, i := range r.index[existing] {
			candidates = append(candidates, r.candidate(i, similarity, domain.MatchFuzzy))
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Similarity > candidates[b].Similarity
	})
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	if r.debug && len(candidates) > 0 {
		logger.Log.Debug("Duplicate candidates found",
			zap.String("name", name),
			zap.String("brand", brand),
			zap.String("sku", sku),
			zap.Int("candidates", len(candidates)),
			zap.Float64("top_similarity", candidates[0].Similarity),
		)
	}

	return candidates
}

// IsHardDuplicate reports whether the best candidate is close enough to treat
// the record as a duplicate rather than a suggestion. The threshold is strict.
func (r *DuplicateResolver) IsHardDuplicate(candidates []domain.DuplicateCandidate) bool {
	return len(candidates) > 0 && candidates[0].Similarity > r.hardThreshold
}

func (r *DuplicateResolver) candidate(i int, similarity float64, matchType domain.MatchType) domain.DuplicateCandidate {
	entry := r.entries[i]
	return domain.DuplicateCandidate{
		Index:      i,
		Reference:  entry.ID,
		Name:       entry.Name,
		Similarity: similarity,
		MatchType:  matchType,
	}
}
