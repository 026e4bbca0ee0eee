package usecase

import (
	"testing"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCategoryResolver_Suggest(t *testing.T) {
	resolver := NewCategoryResolver(testCategoryRegistry(), 0)

	testCases := []struct {
		name           string
		partName       string
		description    string
		wantSlug       string
		wantConfidence float64
	}{
		{
			name:           "longer keyword outweighs model code",
			partName:       "GX200 Piston Kit 68mm",
			wantSlug:       "engines/pistons",
			wantConfidence: 0.3,
		},
		{
			name:           "keywords of one category add up",
			partName:       "#35 Chain",
			description:    "replacement chain",
			wantSlug:       "chains-sprockets/chains",
			wantConfidence: 14.0 / 20.0,
		},
		{
			name:           "description contributes",
			partName:       "Ring set",
			description:    "fits stock piston and wrist pin",
			wantSlug:       "engines/pistons",
			wantConfidence: 15.0 / 20.0,
		},
		{
			name:           "confidence is capped",
			partName:       "piston ring wrist pin piston",
			wantSlug:       "engines/pistons",
			wantConfidence: 1.0,
		},
		{
			name:     "no keyword",
			partName: "Seat cushion",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolver.Suggest(tc.partName, tc.description)
			assert.Equal(t, tc.wantSlug, got.Slug)
			assert.InDelta(t, tc.wantConfidence, got.Confidence, 1e-9)
			assert.True(t, got.Suggested)
		})
	}
}

func TestCategoryResolver_TieGoesToFirstCategory(t *testing.T) {
	registry := domain.NewCategoryRegistry([]domain.CategorySchema{
		{Slug: "first", Keywords: []string{"drum"}},
		{Slug: "second", Keywords: []string{"shoe"}},
	})
	resolver := NewCategoryResolver(registry, 20)

	got := resolver.Suggest("shoe and drum", "")
	assert.Equal(t, "first", got.Slug)
	assert.InDelta(t, 0.2, got.Confidence, 1e-9)
}

func TestCategoryResolver_KeywordOwnedByFirstDefinition(t *testing.T) {
	registry := domain.NewCategoryRegistry([]domain.CategorySchema{
		{Slug: "clutches", Keywords: []string{"clutch"}},
		{Slug: "sprockets", Keywords: []string{"Clutch", "sprocket"}},
	})
	resolver := NewCategoryResolver(registry, 20)

	got := resolver.Suggest("clutch", "")
	assert.Equal(t, "clutches", got.Slug)
}

func TestCategoryResolver_Divisor(t *testing.T) {
	resolver := NewCategoryResolver(testCategoryRegistry(), 10)
	got := resolver.Suggest("piston", "")
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
}

func TestCategoryResolver_Validate(t *testing.T) {
	resolver := NewCategoryResolver(testCategoryRegistry(), 0)

	testCases := []struct {
		input          string
		wantSlug       string
		wantConfidence float64
	}{
		{"engines/pistons", "engines/pistons", 1.0},
		{"Engines/Pistons", "engines/pistons", 1.0},
		{"chains-sprockets/chains", "chains-sprockets/chains", 1.0},
		{"not a real category", "not-a-real-category", 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := resolver.Validate(tc.input)
			assert.Equal(t, tc.wantSlug, got.Slug)
			assert.Equal(t, tc.wantConfidence, got.Confidence)
			assert.False(t, got.Suggested)
		})
	}
}

func TestCategoryResolver_Resolve(t *testing.T) {
	resolver := NewCategoryResolver(testCategoryRegistry(), 0)

	suggested := resolver.Resolve("Piston", "", "")
	assert.True(t, suggested.Suggested)
	assert.Equal(t, "engines/pistons", suggested.Slug)

	supplied := resolver.Resolve("Piston", "", "chains-sprockets/chains")
	assert.False(t, supplied.Suggested)
	assert.Equal(t, "chains-sprockets/chains", supplied.Slug)
}

func TestCategoryResolver_NilRegistry(t *testing.T) {
	resolver := NewCategoryResolver(nil, 0)
	assert.Empty(t, resolver.Suggest("piston", "").Slug)
	assert.Equal(t, 0.5, resolver.Validate("engines").Confidence)
}
