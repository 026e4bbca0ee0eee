package domain

import "regexp"

// FieldType is the declared type of a category attribute
type FieldType string

const (
	FieldInteger FieldType = "integer"
	FieldDecimal FieldType = "decimal"
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
	FieldEnum    FieldType = "enum"
)

// FieldSpec describes one attribute of a category schema
type FieldSpec struct {
	Type         FieldType     `json:"type"`
	Min          *float64      `json:"min,omitempty"`
	Max          *float64      `json:"max,omitempty"`
	Values       []interface{} `json:"values,omitempty"`
	Pattern      string        `json:"pattern,omitempty"`
	Nullable     bool          `json:"nullable,omitempty"`
	CommonValues []interface{} `json:"common_values,omitempty"`
	Unit         string        `json:"unit,omitempty"`

	// PatternRegex is Pattern anchored at the start of the value; nil when
	// the pattern is absent or does not compile.
	PatternRegex *regexp.Regexp `json:"-"`
}

// CategorySchema is the attribute schema of one category
type CategorySchema struct {
	Slug     string               `json:"slug"`
	Name     string               `json:"name,omitempty"`
	Keywords []string             `json:"keywords,omitempty"`
	Required []string             `json:"required"`
	Optional []string             `json:"optional"`
	Specs    map[string]FieldSpec `json:"specs"`
}

// Declares reports whether field is required or optional for the category
func (c *CategorySchema) Declares(field string) bool {
	for _, f := range c.Required {
		if f == field {
			return true
		}
	}
	for _, f := range c.Optional {
		if f == field {
			return true
		}
	}
	return false
}

// CategoryRegistry holds category schemas in registry order
type CategoryRegistry struct {
	Categories []CategorySchema
	index      map[string]int
}

// NewCategoryRegistry indexes schemas by slug. A repeated slug keeps its first
// position and takes the later definition.
func NewCategoryRegistry(schemas []CategorySchema) *CategoryRegistry {
	r := &CategoryRegistry{index: make(map[string]int, len(schemas))}
	for _, s := range schemas {
		if i, ok := r.index[s.Slug]; ok {
			r.Categories[i] = s
			continue
		}
		r.index[s.Slug] = len(r.Categories)
		r.Categories = append(r.Categories, s)
	}
	return r
}

// Lookup returns the schema for slug
func (r *CategoryRegistry) Lookup(slug string) (*CategorySchema, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[slug]
	if !ok {
		return nil, false
	}
	return &r.Categories[i], true
}

// Has reports whether slug is a known category
func (r *CategoryRegistry) Has(slug string) bool {
	_, ok := r.Lookup(slug)
	return ok
}

// CategoryResult is a suggested or validated category assignment
type CategoryResult struct {
	Slug       string  `json:"slug"`
	Confidence float64 `json:"confidence"`
	Suggested  bool    `json:"suggested"`
}
