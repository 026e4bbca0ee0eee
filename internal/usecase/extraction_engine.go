package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

const (
	defaultMMToInches = 0.0393701
	defaultCIToCC     = 16.387
)

// Confidence of each pattern class when the descriptor does not override it
const (
	confidenceEngineFamily = 0.9
	confidenceBore         = 0.85
	confidenceChain        = 0.95
	confidenceCarburetor   = 0.9
	confidenceThroat       = 0.85
	confidenceSeries       = 0.9
	confidenceBelt         = 0.95
	confidenceShaft        = 0.85
	confidenceKeyway       = 0.9
	confidenceTeeth        = 0.9
	confidenceEngagement   = 0.85
	confidenceShoes        = 0.9
	confidenceDisplacement = 0.85
	confidenceLinks        = 0.9
	confidenceJet          = 0.85
	confidenceCamshaft     = 0.8
)

// ExtractionEngine pulls confidence-scored attributes out of part names and
// descriptions using the pattern registry.
type ExtractionEngine struct {
	patterns   *domain.PatternRegistry
	mmToInches float64
}

// NewExtractionEngine creates an engine over a compiled pattern registry
func NewExtractionEngine(patterns *domain.PatternRegistry) *ExtractionEngine {
	e := &ExtractionEngine{patterns: patterns, mmToInches: defaultMMToInches}
	if patterns != nil {
		if f, ok := patterns.UnitConversions["mm_to_inches"]; ok && f > 0 {
			e.mmToInches = f
		}
	}
	return e
}

// Extract runs every extractor over name and description in a fixed order,
// then applies explicit attributes on top. Explicit values always win.
func (e *ExtractionEngine) Extract(name, description string, explicit *domain.Metadata) *domain.ExtractionReport {
	report := domain.NewExtractionReport()
	text := strings.TrimSpace(name + " " + description)

	e.extractEngineFamily(text, report)
	e.extractBore(text, report)
	e.extractChain(text, report)
	e.extractCarburetor(text, report)
	e.extractTorqueConverter(text, report)
	e.extractShaft(text, report)
	e.extractSprocket(text, report)
	e.extractClutch(text, report)
	e.extractDisplacement(text, report)
	e.extractLinks(text, report)
	e.extractJets(text, report)
	e.extractCamshaft(text, report)

	for _, key := range explicit.Keys() {
		value, _ := explicit.Get(key)
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		report.Add(domain.ExtractionResult{
			Field:      key,
			Value:      value,
			Confidence: 1.0,
			Source:     domain.SourceExplicit,
		})
	}

	return report
}

// extractEngineFamily picks the earliest configured family with a matching
// signature. Position in the registry decides, not position in the text.
func (e *ExtractionEngine) extractEngineFamily(text string, report *domain.ExtractionReport) {
	if e.patterns == nil {
		return
	}

	families := e.patterns.EngineFamilies
	var best *domain.EngineFamily
	bestPriority := -1

	for i := range families {
		for _, re := range families[i].Patterns {
			if re == nil || !re.MatchString(text) {
				continue
			}
			priority := len(families) - i
			if priority > bestPriority {
				bestPriority = priority
				best = &families[i]
			}
			break
		}
	}
	if best == nil {
		return
	}

	report.EngineFamily = best.Family
	report.EngineFamilyConfidence = confidenceEngineFamily

	if best.DisplacementCC != nil {
		report.Add(domain.ExtractionResult{
			Field:      "displacement_cc",
			Value:      best.DisplacementCC,
			Confidence: confidenceEngineFamily,
			Source:     domain.SourceEngineFamily,
			RawMatch:   best.Family,
		})
	}
	if best.Variant != nil {
		report.Add(domain.ExtractionResult{
			Field:      "variant",
			Value:      best.Variant,
			Confidence: confidenceEngineFamily,
			Source:     domain.SourceEngineFamily,
			RawMatch:   best.Family,
		})
	}
}

func (e *ExtractionEngine) extractBore(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupBore, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		value, ok := m.floatAt(d.CaptureGroup)
		if !ok {
			return false
		}
		report.Add(extraction(d, m, fieldOr(d, "bore_mm"), value, confidenceBore))
		return true
	})
}

func (e *ExtractionEngine) extractChain(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupChain, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		report.Add(extraction(d, m, "chain_size", d.Value, confidenceChain))
		if d.PitchIn != nil {
			report.Add(domain.ExtractionResult{
				Field:      "pitch_in",
				Value:      d.PitchIn,
				Confidence: confidenceChain,
				Source:     domain.SourceDerived,
				RawMatch:   fmt.Sprintf("derived from %v", d.Value),
			})
		}
		return true
	})
}

// extractCarburetor fills the model template from the capture groups, then
// looks for a throat diameter independently.
func (e *ExtractionEngine) extractCarburetor(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupCarburetor, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		model := d.Template
		for i := 1; i <= 4; i++ {
			group, ok := m.group(i)
			if !ok {
				break
			}
			model = strings.ReplaceAll(model, fmt.Sprintf("{%d}", i), strings.ToUpper(group))
		}
		report.Add(extraction(d, m, "carburetor_model", model, confidenceCarburetor))
		return true
	})

	e.firstMatch(domain.GroupThroatDiameter, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		value, ok := m.intAt(d.CaptureGroup)
		if !ok {
			return false
		}
		report.Add(extraction(d, m, "throat_diameter_mm", value, confidenceThroat))
		return true
	})
}

func (e *ExtractionEngine) extractTorqueConverter(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupTorqueConverter, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		report.Add(extraction(d, m, "series", d.Series, confidenceSeries))
		if d.BeltNumber != nil {
			report.Add(domain.ExtractionResult{
				Field:      "belt_number",
				Value:      d.BeltNumber,
				Confidence: confidenceBelt,
				Source:     domain.SourceName,
				RawMatch:   m.raw(),
			})
		}
		return true
	})
}

// extractShaft reads the shaft bore, converting metric bores to inches, then
// the keyway style.
func (e *ExtractionEngine) extractShaft(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupShaftBore, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		var value float64
		if d.Kind == "fraction" {
			num, ok1 := m.group(1)
			den, ok2 := m.group(2)
			if !ok1 || !ok2 {
				return false
			}
			v, ok := ParseFraction(num + "/" + den)
			if !ok {
				return false
			}
			value = v
		} else {
			v, ok := m.floatAt(d.CaptureGroup)
			if !ok {
				return false
			}
			value = v
		}

		field := fieldOr(d, "bore_in")
		if d.ConvertToInches && d.Unit == "mm" {
			value *= e.mmToInches
			field = "bore_in"
		}
		report.Add(extraction(d, m, field, round3(value), confidenceShaft))
		return true
	})

	e.firstMatch(domain.GroupShaftKeyway, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		report.Add(extraction(d, m, "keyway", d.Value, confidenceKeyway))
		return true
	})
}

func (e *ExtractionEngine) extractSprocket(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupSprocketTeeth, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		value, ok := m.intAt(d.CaptureGroup)
		if !ok {
			return false
		}
		report.Add(extraction(d, m, "teeth", value, confidenceTeeth))
		return true
	})
}

func (e *ExtractionEngine) extractClutch(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupClutchEngagement, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		value, ok := m.intAt(d.CaptureGroup)
		if !ok {
			return false
		}
		report.Add(extraction(d, m, "engagement_rpm", value, confidenceEngagement))
		return true
	})

	e.firstMatch(domain.GroupClutchShoes, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		value, ok := m.intAt(d.CaptureGroup)
		if !ok {
			return false
		}
		report.Add(extraction(d, m, "shoes_count", value, confidenceShoes))
		return true
	})
}

// extractDisplacement never overrides a displacement already inferred from
// the engine family.
func (e *ExtractionEngine) extractDisplacement(text string, report *domain.ExtractionReport) {
	if report.Metadata.Has("displacement_cc") {
		return
	}
	e.firstMatch(domain.GroupDisplacement, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		value, ok := m.floatAt(d.CaptureGroup)
		if !ok {
			return false
		}
		if d.ConvertToCC {
			multiplier := d.Multiplier
			if multiplier == 0 {
				multiplier = defaultCIToCC
			}
			value *= multiplier
		}
		report.Add(extraction(d, m, "displacement_cc", int(value), confidenceDisplacement))
		return true
	})
}

func (e *ExtractionEngine) extractLinks(text string, report *domain.ExtractionReport) {
	e.firstMatch(domain.GroupLinkCount, text, func(d *domain.PatternDescriptor, m patternMatch) bool {
		value, ok := m.intAt(d.CaptureGroup)
		if !ok {
			return false
		}
		report.Add(extraction(d, m, "links", value, confidenceLinks))
		return true
	})
}

// extractJets runs every jet pattern; one part can list several jet sizes.
func (e *ExtractionEngine) extractJets(text string, report *domain.ExtractionReport) {
	e.allMatches(domain.GroupJetSizes, text, func(d *domain.PatternDescriptor, m patternMatch) {
		if d.Field == "" {
			return
		}
		if value, ok := m.floatAt(d.CaptureGroup); ok {
			report.Add(extraction(d, m, d.Field, value, confidenceJet))
		}
	})
}

// extractCamshaft runs every camshaft pattern. A configured prefix is glued in
// front of the capture before parsing, so ".312" style lifts read as decimals.
func (e *ExtractionEngine) extractCamshaft(text string, report *domain.ExtractionReport) {
	e.allMatches(domain.GroupCamshaft, text, func(d *domain.PatternDescriptor, m patternMatch) {
		if d.Field == "" {
			return
		}
		raw, ok := m.group(d.CaptureGroup)
		if !ok {
			return
		}
		value, err := strconv.ParseFloat(d.Prefix+raw, 64)
		if err != nil {
			return
		}
		report.Add(extraction(d, m, d.Field, value, confidenceCamshaft))
	})
}

// firstMatch tries the group's descriptors in order and stops after the first
// one whose handler accepts its match. A handler rejects a match it cannot
// parse, letting the next descriptor try.
func (e *ExtractionEngine) firstMatch(group, text string, handle func(*domain.PatternDescriptor, patternMatch) bool) {
	descriptors := e.patterns.Group(group)
	for i := range descriptors {
		d := &descriptors[i]
		if d.Regex == nil {
			continue
		}
		loc := d.Regex.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if handle(d, patternMatch{text: text, loc: loc}) {
			return
		}
	}
}

func (e *ExtractionEngine) allMatches(group, text string, handle func(*domain.PatternDescriptor, patternMatch)) {
	descriptors := e.patterns.Group(group)
	for i := range descriptors {
		d := &descriptors[i]
		if d.Regex == nil {
			continue
		}
		if loc := d.Regex.FindStringSubmatchIndex(text); loc != nil {
			handle(d, patternMatch{text: text, loc: loc})
		}
	}
}

// patternMatch is one regex hit with access to its capture groups
type patternMatch struct {
	text string
	loc  []int
}

// group returns capture i; ok is false when i is out of range or the group
// did not take part in the match.
func (m patternMatch) group(i int) (string, bool) {
	if i < 0 || 2*i+1 >= len(m.loc) || m.loc[2*i] < 0 {
		return "", false
	}
	return m.text[m.loc[2*i]:m.loc[2*i+1]], true
}

func (m patternMatch) raw() string {
	s, _ := m.group(0)
	return s
}

func (m patternMatch) floatAt(i int) (float64, bool) {
	s, ok := m.group(i)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (m patternMatch) intAt(i int) (int, bool) {
	s, ok := m.group(i)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// extraction builds a name-sourced extraction, applying the descriptor's
// confidence and review hints.
func extraction(d *domain.PatternDescriptor, m patternMatch, field string, value interface{}, confidence float64) domain.ExtractionResult {
	if d.Confidence > 0 {
		confidence = d.Confidence
	}
	return domain.ExtractionResult{
		Field:          field,
		Value:          value,
		Confidence:     confidence,
		Source:         domain.SourceName,
		PatternMatched: d.Pattern,
		RawMatch:       m.raw(),
		NeedsReview:    d.NeedsReview,
		ReviewReason:   d.ReviewReason,
	}
}

func fieldOr(d *domain.PatternDescriptor, fallback string) string {
	if d.Field != "" {
		return d.Field
	}
	return fallback
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
