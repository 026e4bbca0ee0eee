package registry_test

import (
	"testing"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/registry"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPipeline(t *testing.T) *usecase.Pipeline {
	t.Helper()
	set, err := registry.Default()
	require.NoError(t, err)
	return usecase.NewPipeline(usecase.Registries{
		Brands:     set.Brands,
		Categories: set.Categories,
		Patterns:   set.Patterns,
	}, nil, usecase.PipelineConfig{})
}

func metadataValue(t *testing.T, m *domain.Metadata, key string) interface{} {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok, "metadata has no %q", key)
	return v
}

func TestDefaults_PistonKitScenario(t *testing.T) {
	p := defaultPipeline(t)

	record := p.Process(domain.PartInput{Name: "GX200 Piston Kit 68mm", Brand: "Honda"})

	specs := record.ExtractedSpecs
	assert.Equal(t, "honda_gx200", specs.EngineFamily)
	assert.Equal(t, 0.9, specs.EngineFamilyConfidence)
	assert.Equal(t, 68.0, metadataValue(t, specs.Metadata, "bore_mm"))
	assert.Equal(t, 196, metadataValue(t, specs.Metadata, "displacement_cc"))

	assert.Equal(t, "engines/pistons", record.NormalizedData.Category.Slug)
	assert.True(t, record.NormalizedData.Category.Suggested)
	assert.InDelta(t, 0.3, record.NormalizedData.Category.Confidence, 1e-9)

	assert.True(t, record.Validation.IsValid)
	assert.Equal(t, domain.StatusNeedsReview, record.Status)
	assert.Equal(t, []string{domain.ReasonLowCategoryConfidence}, record.ReviewReasons)

	record = p.Process(domain.PartInput{Name: "GX200 Piston Kit 68mm", Brand: "Honda", Category: "engines/pistons"})
	assert.Equal(t, domain.StatusReady, record.Status)
}

func TestDefaults_Brands(t *testing.T) {
	p := defaultPipeline(t)

	testCases := []struct {
		input       string
		canonical   string
		matchType   domain.MatchType
		needsReview bool
	}{
		{input: "Honda", canonical: "Honda", matchType: domain.MatchExact},
		{input: "Honnda", canonical: "Honda", matchType: domain.MatchFuzzy, needsReview: true},
		{input: "b&s", canonical: "Briggs & Stratton", matchType: domain.MatchExact},
		{input: "HF Predator", canonical: "Predator", matchType: domain.MatchExact},
		{input: "Max Torque", canonical: "Max-Torque", matchType: domain.MatchExact},
		{input: "Zzyzx Industries", canonical: "Unknown", matchType: domain.MatchNone, needsReview: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := p.Brands().Resolve(tc.input)
			assert.Equal(t, tc.canonical, got.Canonical)
			assert.Equal(t, tc.matchType, got.MatchType)
			assert.Equal(t, tc.needsReview, got.NeedsReview)
		})
	}
}

func TestDefaults_Extraction(t *testing.T) {
	p := defaultPipeline(t)

	testCases := []struct {
		name   string
		text   string
		family string
		want   map[string]interface{}
	}{
		{
			name:   "hemi engine",
			text:   "Predator 212 Hemi Engine",
			family: "predator_212_hemi",
			want:   map[string]interface{}{"displacement_cc": 212, "variant": "hemi"},
		},
		{
			name:   "non hemi outranks hemi",
			text:   "Predator 212 Non-Hemi Engine",
			family: "predator_212_non_hemi",
			want:   map[string]interface{}{"variant": "non_hemi"},
		},
		{
			name: "chain",
			text: "#40 Chain 120 Links",
			want: map[string]interface{}{"chain_size": "#40", "pitch_in": 0.5, "links": 120},
		},
		{
			name: "clutch",
			text: `Hilliard 3/4" Bore 12T Clutch 2000 RPM Engagement`,
			want: map[string]interface{}{"bore_in": 0.75, "teeth": 12, "engagement_rpm": 2000},
		},
		{
			name: "carburetor",
			text: "Mikuni VM22 Carburetor 22mm throat",
			want: map[string]interface{}{"carburetor_model": "VM22", "throat_diameter_mm": 22},
		},
		{
			name: "metric crank converts to inches",
			text: "Billet Flywheel 20mm crank",
			want: map[string]interface{}{"bore_in": 0.787},
		},
		{
			name: "torque converter",
			text: "Comet TAV2 30 Series Driver",
			want: map[string]interface{}{"series": "30", "belt_number": "203589"},
		},
		{
			name: "camshaft",
			text: "Stage 2 Cam .265 lift 248 deg duration",
			want: map[string]interface{}{"lift_in": 0.265, "duration_deg": 248.0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := p.Extractor().Extract(tc.text, "", nil)
			assert.Equal(t, tc.family, report.EngineFamily)
			for field, want := range tc.want {
				assert.Equal(t, want, metadataValue(t, report.Metadata, field), field)
			}
		})
	}
}

func TestDefaults_ExplicitOverride(t *testing.T) {
	p := defaultPipeline(t)

	explicit := domain.NewMetadata()
	explicit.Set("displacement_cc", 224)
	record := p.Process(domain.PartInput{
		Name:       "Predator 212 Hemi Engine",
		Brand:      "Predator",
		Category:   "engines/complete-engines",
		Attributes: explicit,
	})

	assert.Equal(t, 224, metadataValue(t, record.ExtractedSpecs.Metadata, "displacement_cc"))
	assert.Equal(t, domain.StatusReady, record.Status)
}
