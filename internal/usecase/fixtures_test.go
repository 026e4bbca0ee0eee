package usecase

import (
	"regexp"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func testBrandRegistry() *domain.BrandRegistry {
	return &domain.BrandRegistry{
		Brands: []domain.BrandEntry{
			{Key: "honda", Canonical: "Honda", Slug: "honda", Aliases: []string{"Honda", "Honda Engines", "Honda Power Equipment"}},
			{Key: "predator", Canonical: "Predator", Slug: "predator", Aliases: []string{"Predator", "Predator Engines", "HF Predator"}},
			{Key: "briggs", Canonical: "Briggs & Stratton", Slug: "briggs-stratton", Aliases: []string{"Briggs & Stratton", "Briggs and Stratton", "B&S"}},
			{Key: "kwa", Canonical: "Kart Works A", Slug: "kart-works-a", Aliases: []string{"kartworksa"}},
			{Key: "kwb", Canonical: "Kart Works B", Slug: "kart-works-b", Aliases: []string{"kartworksb"}},
		},
		Unknown:        domain.BrandIdentity{Canonical: "Unknown", Slug: "unknown"},
		FuzzyThreshold: 0.85,
	}
}

func testCategoryRegistry() *domain.CategoryRegistry {
	return domain.NewCategoryRegistry([]domain.CategorySchema{
		{
			Slug:     "engines/pistons",
			Keywords: []string{"piston", "piston ring", "wrist pin"},
			Required: []string{"bore_mm"},
			Optional: []string{"displacement_cc", "material", "ring_count"},
			Specs: map[string]domain.FieldSpec{
				"bore_mm":         {Type: domain.FieldDecimal, Min: floatPtr(50), Max: floatPtr(100)},
				"displacement_cc": {Type: domain.FieldInteger, CommonValues: []interface{}{196, 212, 224}},
				"material":        {Type: domain.FieldEnum, Values: []interface{}{"cast", "forged", "billet"}, Nullable: true},
				"ring_count":      {Type: domain.FieldInteger, Min: floatPtr(1), Max: floatPtr(4)},
			},
		},
		{
			Slug:     "chains-sprockets/chains",
			Keywords: []string{"chain", "#35 chain", "#40 chain"},
			Required: []string{"chain_size", "links"},
			Optional: []string{"pitch_in", "part_code", "o_ring"},
			Specs: map[string]domain.FieldSpec{
				"chain_size": {Type: domain.FieldEnum, Values: []interface{}{"#35", "#40", "#41"}},
				"links":      {Type: domain.FieldInteger, Min: floatPtr(40), Max: floatPtr(200)},
				"pitch_in":   {Type: domain.FieldDecimal},
				"part_code": {
					Type:         domain.FieldString,
					Pattern:      `[A-Z]{2}-\d+`,
					PatternRegex: regexp.MustCompile(`^(?:[A-Z]{2}-\d+)`),
				},
				"o_ring": {Type: domain.FieldBoolean},
			},
		},
		{
			Slug:     "engines/complete-engines",
			Keywords: []string{"engine", "motor", "gx200"},
			Required: []string{"displacement_cc"},
			Optional: []string{"variant", "shaft_diameter_in"},
			Specs: map[string]domain.FieldSpec{
				"displacement_cc": {Type: domain.FieldInteger},
			},
		},
	})
}

func descriptor(pattern string) domain.PatternDescriptor {
	return domain.PatternDescriptor{
		Pattern:      pattern,
		Regex:        regexp.MustCompile("(?i)" + pattern),
		CaptureGroup: 1,
	}
}

func family(name string, displacement, variant interface{}, patterns ...string) domain.EngineFamily {
	f := domain.EngineFamily{Family: name, DisplacementCC: displacement, Variant: variant}
	for _, p := range patterns {
		f.Patterns = append(f.Patterns, regexp.MustCompile("(?i)"+p))
	}
	return f
}

func testPatternRegistry() *domain.PatternRegistry {
	pistonBore := descriptor(`piston[^\n]*?(\d{2}(?:\.\d+)?)\s*mm`)
	pistonBore.Field = "bore_mm"
	plainBore := descriptor(`(\d{2}(?:\.\d+)?)\s*mm\s*bore`)
	plainBore.Field = "bore_mm"

	chain35 := descriptor(`#?35\s*chain`)
	chain35.Value, chain35.PitchIn = "#35", 0.375
	chain40 := descriptor(`#?40\s*chain`)
	chain40.Value, chain40.PitchIn = "#40", 0.5

	vm := descriptor(`mikuni\s*vm\s*(\d{2})`)
	vm.Template, vm.Brand = "VM{1}", "Mikuni"
	pwk := descriptor(`pwk\s*(\d{2})`)
	pwk.Template = "PWK{1}"

	comet40 := descriptor(`comet\s*40\s*series|tav\s*40`)
	comet40.Series, comet40.BeltNumber = "40", "203589"
	comet30 := descriptor(`30\s*series|tav\s*30`)
	comet30.Series, comet30.BeltNumber = "30", "203789"

	fractionShaft := descriptor(`(\d+)/(\d+)"?\s*(?:bore|shaft)`)
	fractionShaft.Kind = "fraction"
	metricShaft := descriptor(`(\d+(?:\.\d+)?)\s*mm\s*(?:bore|shaft)`)
	metricShaft.Field, metricShaft.Unit, metricShaft.ConvertToInches = "bore_mm", "mm", true

	keyway := descriptor(`3/16"?\s*key`)
	keyway.Value = "3/16"

	cubicInch := descriptor(`(\d+(?:\.\d+)?)\s*(?:ci|cubic inch)\b`)
	cubicInch.ConvertToCC = true

	mainJet := descriptor(`main\s*jet\s*#?(\d+(?:\.\d+)?)`)
	mainJet.Field = "main_jet"
	pilotJet := descriptor(`pilot\s*jet\s*#?(\d+(?:\.\d+)?)`)
	pilotJet.Field = "pilot_jet"

	duration := descriptor(`(\d{3})\s*(?:°|deg)\w*\s*duration`)
	duration.Field = "duration_deg"
	lift := descriptor(`\.(\d{3})"?\s*lift`)
	lift.Field, lift.Prefix = "lift_in", "0."

	return &domain.PatternRegistry{
		EngineFamilies: []domain.EngineFamily{
			family("ghost_212", 212, "ghost", `ghost\s*212`),
			family("predator_212_hemi", 212, "hemi", `predator\s*212\s*hemi`),
			family("predator_212", 212, nil, `predator\s*212`, `pred\s*212`),
			family("gx200", 196, nil, `gx\s*200`),
		},
		Groups: map[string][]domain.PatternDescriptor{
			domain.GroupBore:             {pistonBore, plainBore},
			domain.GroupChain:            {chain35, chain40},
			domain.GroupCarburetor:       {vm, pwk},
			domain.GroupThroatDiameter:   {descriptor(`(\d{2})\s*mm\s*throat`)},
			domain.GroupTorqueConverter:  {comet40, comet30},
			domain.GroupShaftBore:        {fractionShaft, metricShaft},
			domain.GroupShaftKeyway:      {keyway},
			domain.GroupSprocketTeeth:    {descriptor(`(\d{2})\s*(?:tooth|teeth)`)},
			domain.GroupClutchEngagement: {descriptor(`(\d{4})\s*rpm\s*engag`)},
			domain.GroupClutchShoes:      {descriptor(`(\d)\s*shoe`)},
			domain.GroupDisplacement:     {descriptor(`(\d{2,4})\s*cc\b`), cubicInch},
			domain.GroupLinkCount:        {descriptor(`(\d{2,3})\s*links?\b`)},
			domain.GroupJetSizes:         {mainJet, pilotJet},
			domain.GroupCamshaft:         {duration, lift},
		},
		UnitConversions: map[string]float64{"mm_to_inches": 0.0393701},
	}
}
