package registry

import (
	"fmt"
	"regexp"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type patternFile struct {
	UnitConversions map[string]float64     `yaml:"unit_conversions"`
	EngineFamilies  []yaml.Node            `yaml:"engine_families"`
	Groups          map[string][]yaml.Node `yaml:"groups"`
}

type engineFamilyYAML struct {
	Family         string      `yaml:"family"`
	Patterns       []string    `yaml:"patterns"`
	DisplacementCC interface{} `yaml:"displacement_cc"`
	Variant        interface{} `yaml:"variant"`
}

type descriptorYAML struct {
	Pattern         string      `yaml:"pattern"`
	CaptureGroup    *int        `yaml:"capture_group"`
	Field           string      `yaml:"field"`
	Value           interface{} `yaml:"value"`
	Confidence      float64     `yaml:"confidence"`
	Type            string      `yaml:"type"`
	Unit            string      `yaml:"unit"`
	Template        string      `yaml:"template"`
	Brand           string      `yaml:"brand"`
	Prefix          string      `yaml:"prefix"`
	Multiplier      float64     `yaml:"multiplier"`
	ConvertToInches bool        `yaml:"convert_to_inches"`
	ConvertToCC     bool        `yaml:"convert_to_cc"`
	PitchIn         interface{} `yaml:"pitch_in"`
	Series          interface{} `yaml:"series"`
	BeltNumber      interface{} `yaml:"belt_number"`
	NeedsReview     bool        `yaml:"needs_review"`
	ReviewReason    string      `yaml:"review_reason"`
}

// knownGroups are the groups the extraction engine runs
var knownGroups = map[string]bool{
	domain.GroupBore:             true,
	domain.GroupChain:            true,
	domain.GroupCarburetor:       true,
	domain.GroupThroatDiameter:   true,
	domain.GroupTorqueConverter:  true,
	domain.GroupShaftBore:        true,
	domain.GroupShaftKeyway:      true,
	domain.GroupSprocketTeeth:    true,
	domain.GroupClutchEngagement: true,
	domain.GroupClutchShoes:      true,
	domain.GroupDisplacement:     true,
	domain.GroupLinkCount:        true,
	domain.GroupJetSizes:         true,
	domain.GroupCamshaft:         true,
}

// ParsePatterns decodes and compiles a pattern registry document. Every
// pattern is matched case-insensitively. A pattern that does not compile is
// dropped on its own; the rest of its group still loads.
func ParsePatterns(data []byte) (*domain.PatternRegistry, error) {
	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: patterns: %v", domain.ErrRegistryLoad, err)
	}

	registry := &domain.PatternRegistry{
		Groups:          make(map[string][]domain.PatternDescriptor, len(file.Groups)),
		UnitConversions: file.UnitConversions,
	}
	if registry.UnitConversions == nil {
		registry.UnitConversions = map[string]float64{}
	}

	for i := range file.EngineFamilies {
		family, err := parseEngineFamily(&file.EngineFamilies[i])
		if err != nil {
			registryLog().Warn("Skipping malformed engine family", zap.Int("position", i), zap.Error(err))
			continue
		}
		registry.EngineFamilies = append(registry.EngineFamilies, family)
	}

	for group, nodes := range file.Groups {
		if !knownGroups[group] {
			registryLog().Warn("Ignoring unknown pattern group", zap.String("group", group))
			continue
		}
		descriptors := make([]domain.PatternDescriptor, 0, len(nodes))
		for i := range nodes {
			d, err := parseDescriptor(&nodes[i])
			if err != nil {
				registryLog().Warn("Skipping malformed pattern",
					zap.String("group", group),
					zap.Int("position", i),
					zap.Error(err),
				)
				continue
			}
			descriptors = append(descriptors, d)
		}
		registry.Groups[group] = descriptors
	}

	return registry, nil
}

func parseEngineFamily(node *yaml.Node) (domain.EngineFamily, error) {
	var raw engineFamilyYAML
	if err := node.Decode(&raw); err != nil {
		return domain.EngineFamily{}, err
	}
	if raw.Family == "" {
		return domain.EngineFamily{}, fmt.Errorf("missing family name")
	}

	family := domain.EngineFamily{
		Family:         raw.Family,
		DisplacementCC: raw.DisplacementCC,
		Variant:        raw.Variant,
	}
	for _, p := range raw.Patterns {
		re, err := compilePattern(p)
		if err != nil {
			registryLog().Warn("Skipping engine family pattern",
				zap.String("family", raw.Family),
				zap.String("pattern", p),
				zap.Error(err),
			)
			continue
		}
		family.Patterns = append(family.Patterns, re)
	}
	if len(family.Patterns) == 0 {
		return domain.EngineFamily{}, fmt.Errorf("family %s has no usable patterns", raw.Family)
	}
	return family, nil
}

func parseDescriptor(node *yaml.Node) (domain.PatternDescriptor, error) {
	var raw descriptorYAML
	if err := node.Decode(&raw); err != nil {
		return domain.PatternDescriptor{}, err
	}
	if raw.Pattern == "" {
		return domain.PatternDescriptor{}, fmt.Errorf("missing pattern")
	}

	re, err := compilePattern(raw.Pattern)
	if err != nil {
		return domain.PatternDescriptor{}, err
	}

	captureGroup := 1
	if raw.CaptureGroup != nil {
		captureGroup = *raw.CaptureGroup
	}

	return domain.PatternDescriptor{
		Pattern:         raw.Pattern,
		Regex:           re,
		CaptureGroup:    captureGroup,
		Field:           raw.Field,
		Value:           raw.Value,
		Confidence:      raw.Confidence,
		Kind:            raw.Type,
		Unit:            raw.Unit,
		Template:        raw.Template,
		Brand:           raw.Brand,
		Prefix:          raw.Prefix,
		Multiplier:      raw.Multiplier,
		ConvertToInches: raw.ConvertToInches,
		ConvertToCC:     raw.ConvertToCC,
		PitchIn:         raw.PitchIn,
		Series:          raw.Series,
		BeltNumber:      raw.BeltNumber,
		NeedsReview:     raw.NeedsReview,
		ReviewReason:    raw.ReviewReason,
	}, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}
