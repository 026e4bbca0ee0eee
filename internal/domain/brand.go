package domain

// MatchType describes how an input string was matched
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = "none"
)

// Brand review reasons
const (
	ReasonEmptyInput = "empty_input"
	ReasonNoMatch    = "no_match"
)

// BrandIdentity is a canonical brand name and its slug
type BrandIdentity struct {
	Canonical string `json:"canonical" yaml:"canonical"`
	Slug      string `json:"slug" yaml:"slug"`
}

// BrandEntry is one brand from the alias registry
type BrandEntry struct {
	Key       string   `json:"key"`
	Canonical string   `json:"canonical"`
	Slug      string   `json:"slug"`
	Aliases   []string `json:"aliases"`
}

// BrandRegistry holds the brand alias table in registry order
type BrandRegistry struct {
	Brands         []BrandEntry
	Unknown        BrandIdentity
	FuzzyThreshold float64
}

// BrandMatch is the result of resolving a free-text brand
type BrandMatch struct {
	Canonical   string    `json:"canonical"`
	Slug        string    `json:"slug"`
	Original    string    `json:"original"`
	Matched     bool      `json:"matched"`
	MatchType   MatchType `json:"match_type"`
	Score       float64   `json:"score"`
	NeedsReview bool      `json:"needs_review"`
	Reason      string    `json:"reason,omitempty"`
}
