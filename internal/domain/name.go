package domain

// NameResult is a normalized part name
type NameResult struct {
	Normalized string   `json:"normalized"`
	Slug       string   `json:"slug"`
	Original   string   `json:"original"`
	Changes    []string `json:"changes"`
}
