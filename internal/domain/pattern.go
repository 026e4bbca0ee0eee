package domain

import "regexp"

// Pattern group names, in the order the extraction engine runs them
const (
	GroupBore             = "bore_sizes"
	GroupChain            = "chain_sizes"
	GroupCarburetor       = "carburetor_models"
	GroupThroatDiameter   = "carburetor_throat"
	GroupTorqueConverter  = "torque_converter_series"
	GroupShaftBore        = "shaft_bore"
	GroupShaftKeyway      = "shaft_keyway"
	GroupSprocketTeeth    = "sprocket_teeth"
	GroupClutchEngagement = "clutch_engagement"
	GroupClutchShoes      = "clutch_shoes"
	GroupDisplacement     = "displacement_cc"
	GroupLinkCount        = "link_count"
	GroupJetSizes         = "jet_sizes"
	GroupCamshaft         = "camshaft_specs"
)

// PatternDescriptor is one configured matcher inside a pattern group
type PatternDescriptor struct {
	Pattern      string
	Regex        *regexp.Regexp
	CaptureGroup int
	Field        string
	Value        interface{}
	Confidence   float64
	Kind         string
	Unit         string
	Template     string
	Brand        string
	Prefix       string
	Multiplier   float64

	ConvertToInches bool
	ConvertToCC     bool

	// Derived values emitted next to the primary match
	PitchIn    interface{}
	Series     interface{}
	BeltNumber interface{}

	NeedsReview  bool
	ReviewReason string
}

// EngineFamily is a named cluster of engine attributes recognised by signature
type EngineFamily struct {
	Family         string
	Patterns       []*regexp.Regexp
	DisplacementCC interface{}
	Variant        interface{}
}

// PatternRegistry holds the compiled extraction configuration
type PatternRegistry struct {
	EngineFamilies  []EngineFamily
	Groups          map[string][]PatternDescriptor
	UnitConversions map[string]float64
}

// Group returns the descriptors configured for name, in order
func (r *PatternRegistry) Group(name string) []PatternDescriptor {
	if r == nil {
		return nil
	}
	return r.Groups[name]
}
