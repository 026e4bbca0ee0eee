package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

var (
	slugStripPattern     = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSeparatorPattern = regexp.MustCompile(`[-\s]+`)
)

// defaultAbbreviations maps lowercase shop abbreviations to their expansion
var defaultAbbreviations = map[string]string{
	"carb":  "Carburetor",
	"carbs": "Carburetors",
	"conv":  "Converter",
	"tc":    "Torque Converter",
	"pred":  "Predator",
	"hf":    "Harbor Freight",
	"cyl":   "Cylinder",
	"eng":   "Engine",
	"exh":   "Exhaust",
	"hdr":   "Header",
	"int":   "Intake",
	"mfld":  "Manifold",
	"perf":  "Performance",
	"stg":   "Stage",
	"alum":  "Aluminum",
	"ss":    "Stainless Steel",
	"blk":   "Black",
	"chr":   "Chrome",
	"w/":    "with",
	"wo/":   "without",
	"incl":  "Includes",
	"oem":   "OEM",
	"assy":  "Assembly",
}

// Tokens forced to upper case wherever they appear
var upperTokens = map[string]bool{
	"OHV": true, "OHC": true, "GX": true, "LO206": true, "CC": true, "RPM": true,
	"HP": true, "ID": true, "OD": true, "USA": true, "CNC": true,
}

// Function words kept lower case unless they open the name
var lowerTokens = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"for": true, "with": true, "to": true, "of": true, "in": true, "on": true,
}

// NameNormalizer cleans part names and derives their slugs
type NameNormalizer struct {
	abbreviations map[string]string
	expand        bool
}

// NewNameNormalizer creates a normalizer using the built-in abbreviation table
func NewNameNormalizer(expandAbbreviations bool) *NameNormalizer {
	return &NameNormalizer{
		abbreviations: defaultAbbreviations,
		expand:        expandAbbreviations,
	}
}

// Normalize cleans name and records which transformations fired
func (n *NameNormalizer) Normalize(name string) domain.NameResult {
	result := domain.NameResult{Original: name, Changes: []string{}}
	if name == "" {
		return result
	}

	normalized := NormalizeUnicode(strings.TrimSpace(name))

	if strings.Contains(normalized, "  ") {
		normalized = multiSpacePattern.ReplaceAllString(normalized, " ")
		result.Changes = append(result.Changes, "fixed_whitespace")
	}

	normalized = StandardizeQuotes(normalized)

	if n.expand {
		words := strings.Fields(normalized)
		for i, word := range words {
			key := strings.TrimRight(strings.ToLower(word), ".,;:")
			if expansion, ok := n.abbreviations[key]; ok {
				words[i] = expansion
				result.Changes = append(result.Changes, "expanded_"+key)
			}
		}
		normalized = strings.Join(words, " ")
	}

	result.Normalized = titleCase(normalized)
	result.Slug = Slugify(result.Normalized)
	return result
}

func titleCase(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		upper := strings.ToUpper(word)
		switch {
		case upperTokens[upper]:
			words[i] = upper
		case i > 0 && lowerTokens[strings.ToLower(word)]:
			words[i] = strings.ToLower(word)
		case strings.HasPrefix(word, "#"):
			words[i] = upper
		default:
			words[i] = capitalize(word)
		}
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest
func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Slugify lowercases text, drops everything but word characters, spaces and
// hyphens, and joins the remaining words with single hyphens.
func Slugify(text string) string {
	slug := strings.ToLower(text)
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugSeparatorPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
