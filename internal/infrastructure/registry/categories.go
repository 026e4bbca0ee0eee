package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type categoryFile struct {
	Categories yaml.Node `yaml:"categories"`
}

type categoryYAML struct {
	Name     string               `yaml:"name"`
	Keywords []string             `yaml:"keywords"`
	Required []string             `yaml:"required"`
	Optional []string             `yaml:"optional"`
	Specs    map[string]yaml.Node `yaml:"specs"`
}

type fieldSpecYAML struct {
	Type         string        `yaml:"type"`
	Min          *float64      `yaml:"min"`
	Max          *float64      `yaml:"max"`
	Values       []interface{} `yaml:"values"`
	Pattern      string        `yaml:"pattern"`
	Nullable     bool          `yaml:"nullable"`
	CommonValues []interface{} `yaml:"common_values"`
	Unit         string        `yaml:"unit"`
}

var fieldTypes = map[string]domain.FieldType{
	"integer": domain.FieldInteger,
	"decimal": domain.FieldDecimal,
	"string":  domain.FieldString,
	"boolean": domain.FieldBoolean,
	"enum":    domain.FieldEnum,
}

// ParseCategories decodes a category registry document. Categories keep their
// document order, which decides keyword ownership and suggestion ties.
func ParseCategories(data []byte) (*domain.CategoryRegistry, error) {
	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", domain.ErrRegistryLoad, err)
	}

	entries, err := mappingEntries(&file.Categories)
	if err != nil {
		return nil, fmt.Errorf("%w: categories: %v", domain.ErrRegistryLoad, err)
	}

	schemas := make([]domain.CategorySchema, 0, len(entries))
	for _, e := range entries {
		schema, err := parseCategory(e.key, e.value)
		if err != nil {
			registryLog().Warn("Skipping malformed category", zap.String("category", e.key), zap.Error(err))
			continue
		}
		schemas = append(schemas, schema)
	}

	return domain.NewCategoryRegistry(schemas), nil
}

func parseCategory(slug string, node *yaml.Node) (domain.CategorySchema, error) {
	if strings.TrimSpace(slug) == "" {
		return domain.CategorySchema{}, fmt.Errorf("empty category slug")
	}

	var c categoryYAML
	if err := node.Decode(&c); err != nil {
		return domain.CategorySchema{}, err
	}

	schema := domain.CategorySchema{
		Slug:     slug,
		Name:     c.Name,
		Keywords: c.Keywords,
		Required: c.Required,
		Optional: c.Optional,
		Specs:    make(map[string]domain.FieldSpec, len(c.Specs)),
	}
	if schema.Required == nil {
		schema.Required = []string{}
	}
	if schema.Optional == nil {
		schema.Optional = []string{}
	}

	for field, specNode := range c.Specs {
		spec, err := parseFieldSpec(&specNode)
		if err != nil {
			registryLog().Warn("Skipping malformed field spec",
				zap.String("category", slug),
				zap.String("field", field),
				zap.Error(err),
			)
			continue
		}
		schema.Specs[field] = spec
	}

	return schema, nil
}

func parseFieldSpec(node *yaml.Node) (domain.FieldSpec, error) {
	var raw fieldSpecYAML
	if err := node.Decode(&raw); err != nil {
		return domain.FieldSpec{}, err
	}

	fieldType, ok := fieldTypes[raw.Type]
	if !ok {
		return domain.FieldSpec{}, fmt.Errorf("unknown field type %q", raw.Type)
	}

	spec := domain.FieldSpec{
		Type:         fieldType,
		Min:          raw.Min,
		Max:          raw.Max,
		Values:       raw.Values,
		Pattern:      raw.Pattern,
		Nullable:     raw.Nullable,
		CommonValues: raw.CommonValues,
		Unit:         raw.Unit,
	}

	if raw.Pattern != "" {
		// Patterns constrain the start of the value
		re, err := regexp.Compile("^(?:" + raw.Pattern + ")")
		if err != nil {
			registryLog().Warn("Field pattern does not compile; it will not be enforced",
				zap.String("pattern", raw.Pattern),
				zap.Error(err),
			)
		} else {
			spec.PatternRegex = re
		}
	}

	return spec, nil
}
