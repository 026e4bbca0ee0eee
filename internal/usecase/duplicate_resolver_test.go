package usecase

import (
	"testing"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDuplicateResolver(t *testing.T) {
	t.Run("uses defaults when zero", func(t *testing.T) {
		r := NewDuplicateResolver(nil, DuplicateConfig{})
		if r.fuzzyThreshold != DefaultDuplicateFuzzyThreshold {
			t.Errorf("fuzzyThreshold = %v, want %v", r.fuzzyThreshold, DefaultDuplicateFuzzyThreshold)
		}
		if r.hardThreshold != DefaultHardDuplicateThreshold {
			t.Errorf("hardThreshold = %v, want %v", r.hardThreshold, DefaultHardDuplicateThreshold)
		}
		if r.maxCandidates != DefaultMaxDuplicateCandidates {
			t.Errorf("maxCandidates = %v, want %v", r.maxCandidates, DefaultMaxDuplicateCandidates)
		}
	})

	t.Run("keeps provided config", func(t *testing.T) {
		r := NewDuplicateResolver(nil, DuplicateConfig{FuzzyThreshold: 0.9, HardDuplicateThreshold: 0.99, MaxCandidates: 2})
		if r.fuzzyThreshold != 0.9 || r.hardThreshold != 0.99 || r.maxCandidates != 2 {
			t.Errorf("config not applied: %+v", r)
		}
	})

	t.Run("skips entries without a usable name", func(t *testing.T) {
		r := NewDuplicateResolver([]domain.CatalogEntry{{ID: "a", Name: "!!!"}, {ID: "b", Name: "Chain"}}, DuplicateConfig{})
		assert.Equal(t, []string{"chain"}, r.names)
		assert.Equal(t, 2, r.Len())
	})
}

func TestDuplicateResolver_Find(t *testing.T) {
	entries := []domain.CatalogEntry{
		{ID: "p-1", Name: "35 Chain"},
		{ID: "p-2", Name: "#40 Chain 106 Links"},
		{ID: "p-3", Name: "35 Chains"},
		{ID: "p-4", Name: "Predator 212 Hemi"},
		{ID: "p-5", Name: "#35 chain"},
	}
	r := NewDuplicateResolver(entries, DuplicateConfig{})

	t.Run("punctuation collapses to an exact match", func(t *testing.T) {
		got := r.Find("#35 Chain", "", "")
		require.Len(t, got, 3)
		assert.Equal(t, "p-1", got[0].Reference)
		assert.Equal(t, domain.MatchExact, got[0].MatchType)
		assert.Equal(t, 1.0, got[0].Similarity)
		assert.Equal(t, "p-5", got[1].Reference)
		assert.Equal(t, domain.MatchExact, got[1].MatchType)
		assert.Equal(t, "p-3", got[2].Reference)
		assert.Equal(t, domain.MatchFuzzy, got[2].MatchType)
		assert.InDelta(t, 16.0/17.0, got[2].Similarity, 1e-9)
		assert.True(t, r.IsHardDuplicate(got))
	})

	t.Run("longer name stays below threshold", func(t *testing.T) {
		got := r.Find("Predator 212 Hemi Engine", "Predator", "")
		require.Len(t, got, 0)
	})

	t.Run("near spelling is fuzzy", func(t *testing.T) {
		got := r.Find("Predator 212 Hemii", "", "")
		require.Len(t, got, 1)
		assert.Equal(t, "p-4", got[0].Reference)
		assert.Equal(t, domain.MatchFuzzy, got[0].MatchType)
		assert.InDelta(t, 34.0/35.0, got[0].Similarity, 1e-9)
		assert.True(t, r.IsHardDuplicate(got))
	})

	t.Run("empty name finds nothing", func(t *testing.T) {
		assert.Empty(t, r.Find("", "", ""))
		assert.Empty(t, r.Find("  ?? ", "", ""))
	})

	t.Run("no candidates", func(t *testing.T) {
		got := r.Find("Seat Cushion", "", "")
		assert.Empty(t, got)
		assert.False(t, r.IsHardDuplicate(got))
	})
}

func TestDuplicateResolver_EmptyComparisonSet(t *testing.T) {
	r := NewDuplicateResolver(nil, DuplicateConfig{})
	assert.Empty(t, r.Find("35 Chain", "", ""))
}

func TestDuplicateResolver_TruncatesToMaxCandidates(t *testing.T) {
	var entries []domain.CatalogEntry
	for i := 0; i < 8; i++ {
		entries = append(entries, domain.CatalogEntry{ID: string(rune('a' + i)), Name: "Clutch Spring"})
	}
	r := NewDuplicateResolver(entries, DuplicateConfig{})

	got := r.Find("clutch spring", "", "")
	require.Len(t, got, DefaultMaxDuplicateCandidates)
	for i, c := range got {
		assert.Equal(t, i, c.Index, "exact matches keep comparison set order")
	}
}

func TestDuplicateResolver_IsHardDuplicate(t *testing.T) {
	r := NewDuplicateResolver(nil, DuplicateConfig{})

	testCases := []struct {
		name       string
		similarity float64
		want       bool
	}{
		{"exactly at threshold", 0.95, false},
		{"just above threshold", 0.951, true},
		{"exact", 1.0, true},
		{"fuzzy suggestion", 0.9, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.IsHardDuplicate([]domain.DuplicateCandidate{{Similarity: tc.similarity}})
			if got != tc.want {
				t.Errorf("IsHardDuplicate(%v) = %v, want %v", tc.similarity, got, tc.want)
			}
		})
	}

	assert.False(t, r.IsHardDuplicate(nil))
}
