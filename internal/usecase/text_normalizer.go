package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// Compiled regex patterns for text normalization
var (
	// Anything that is not a letter, digit, underscore or whitespace
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)

	// "1-1/8"
	mixedFractionPattern = regexp.MustCompile(`^(\d+)-(\d+)/(\d+)$`)

	// "3/4"
	simpleFractionPattern = regexp.MustCompile(`^(\d+)/(\d+)$`)
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "″", `"`,
	"‘", "'", "’", "'", "‚", "'", "′", "'",
)

// unitAliases maps unit spellings to their canonical label
var unitAliases = map[string]string{
	// Length - metric
	"mm": "mm", "millimeter": "mm", "millimeters": "mm",
	"cm": "cm", "centimeter": "cm", "centimeters": "cm",
	// Length - imperial
	"in": "inches", "inch": "inches", "inches": "inches", `"`: "inches",
	// Volume
	"cc": "cc", "cubic centimeter": "cc", "cubic centimeters": "cc",
	"ci": "ci", "cubic inch": "ci", "cubic inches": "ci",
	// Speed
	"rpm": "RPM", "r.p.m.": "RPM", "revolutions per minute": "RPM",
	// Angles
	"deg": "degrees", "degree": "degrees", "degrees": "degrees", "°": "degrees",
	// Weight
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lbs", "lbs": "lbs", "pound": "lbs", "pounds": "lbs",
	// Pressure
	"psi": "PSI",
	// Flow
	"gph": "GPH", "gallons per hour": "GPH",
}

type unitPair struct{ from, to string }

// unitConversions holds multiplicative factors between canonical units
var unitConversions = map[unitPair]float64{
	{"mm", "inches"}: 0.0393701,
	{"inches", "mm"}: 25.4,
	{"cc", "ci"}:     0.0610237,
	{"ci", "cc"}:     16.387,
	{"cm", "inches"}: 0.393701,
	{"inches", "cm"}: 2.54,
	{"oz", "grams"}:  28.3495,
	{"grams", "oz"}:  0.035274,
}

// NormalizeUnicode composes text to NFKC form
func NormalizeUnicode(s string) string {
	return norm.NFKC.String(s)
}

// CollapseWhitespace trims s and replaces every whitespace run with one space
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// StandardizeQuotes replaces typographic quotes and primes with ASCII quotes
func StandardizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// NormalizeForMatching lowercases s, strips punctuation and collapses whitespace.
// Brand and duplicate lookups compare strings in this form.
func NormalizeForMatching(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(strings.TrimSpace(s))
	result = punctuationPattern.ReplaceAllString(result, "")
	result = multiSpacePattern.ReplaceAllString(result, " ")
	return result
}

// ParseFraction parses "3/4", "1-1/8" or a plain decimal. Quote marks are
// ignored. ok is false for empty, ill-formed or zero-denominator input.
func ParseFraction(text string) (value float64, ok bool) {
	if text == "" {
		return 0, false
	}
	text = strings.TrimSpace(text)
	text = strings.NewReplacer(`"`, "", "'", "").Replace(text)

	if m := mixedFractionPattern.FindStringSubmatch(text); m != nil {
		whole, _ := strconv.Atoi(m[1])
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den == 0 {
			return 0, false
		}
		return float64(whole) + float64(num)/float64(den), true
	}

	if m := simpleFractionPattern.FindStringSubmatch(text); m != nil {
		num, _ := strconv.Atoi(m[1])
		den, _ := strconv.Atoi(m[2])
		if den == 0 {
			return 0, false
		}
		return float64(num) / float64(den), true
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeUnit returns the canonical label for a unit spelling. Unknown units
// are returned unchanged.
func NormalizeUnit(unit string) string {
	if unit == "" {
		return ""
	}
	if canonical, ok := unitAliases[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return canonical
	}
	return unit
}

// ConvertUnit converts value between two units. Identical units convert with
// factor 1; ok is false when no factor is known for the pair.
func ConvertUnit(value float64, from, to string) (float64, bool) {
	fromUnit := NormalizeUnit(from)
	toUnit := NormalizeUnit(to)
	if fromUnit == toUnit {
		return value, true
	}
	factor, ok := unitConversions[unitPair{fromUnit, toUnit}]
	if !ok {
		return 0, false
	}
	return value * factor, true
}

// SequenceRatio returns the Ratcliff/Obershelp similarity of a and b in [0,1],
// compared rune by rune.
func SequenceRatio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
