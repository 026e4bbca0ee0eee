package domain

// CatalogEntry is an existing part used as duplicate comparison material
type CatalogEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
	SKU   string `json:"sku,omitempty"`
}

// DuplicateCandidate is a ranked near-duplicate of an incoming record
type DuplicateCandidate struct {
	Index      int       `json:"index"`
	Reference  string    `json:"reference"`
	Name       string    `json:"name"`
	Similarity float64   `json:"similarity"`
	MatchType  MatchType `json:"match_type"`
}
