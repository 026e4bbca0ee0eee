// Package registry loads the brand, category and pattern tables the
// ingestion pipeline is built from. Each table is a YAML document; when no
// path is configured the embedded default is used.
package registry

import (
	"embed"
	"fmt"
	"os"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaults embed.FS

const (
	defaultBrandsFile     = "defaults/brands.yaml"
	defaultCategoriesFile = "defaults/categories.yaml"
	defaultPatternsFile   = "defaults/patterns.yaml"
)

// Paths points at registry files on disk. Empty paths select the defaults.
type Paths struct {
	Brands     string
	Categories string
	Patterns   string
}

// Set is one loaded copy of all three registries
type Set struct {
	Brands     *domain.BrandRegistry
	Categories *domain.CategoryRegistry
	Patterns   *domain.PatternRegistry
}

// Stats counts what a set contains
type Stats struct {
	Brands         int `json:"brands"`
	Aliases        int `json:"aliases"`
	Categories     int `json:"categories"`
	Keywords       int `json:"keywords"`
	EngineFamilies int `json:"engine_families"`
	Patterns       int `json:"patterns"`
}

// Load reads all three registries. A missing or unparseable file fails the
// load; malformed entries inside a file are skipped with a warning.
func Load(paths Paths) (*Set, error) {
	brands, err := LoadBrands(paths.Brands)
	if err != nil {
		return nil, err
	}
	categories, err := LoadCategories(paths.Categories)
	if err != nil {
		return nil, err
	}
	patterns, err := LoadPatterns(paths.Patterns)
	if err != nil {
		return nil, err
	}
	return &Set{Brands: brands, Categories: categories, Patterns: patterns}, nil
}

// Default loads the embedded registries
func Default() (*Set, error) {
	return Load(Paths{})
}

// LoadBrands reads the brand registry at path, or the default when path is empty
func LoadBrands(path string) (*domain.BrandRegistry, error) {
	data, err := readSource(path, defaultBrandsFile)
	if err != nil {
		return nil, err
	}
	return ParseBrands(data)
}

// LoadCategories reads the category registry at path, or the default when path is empty
func LoadCategories(path string) (*domain.CategoryRegistry, error) {
	data, err := readSource(path, defaultCategoriesFile)
	if err != nil {
		return nil, err
	}
	return ParseCategories(data)
}

// LoadPatterns reads the pattern registry at path, or the default when path is empty
func LoadPatterns(path string) (*domain.PatternRegistry, error) {
	data, err := readSource(path, defaultPatternsFile)
	if err != nil {
		return nil, err
	}
	return ParsePatterns(data)
}

// Stats counts the entries of every registry in the set
func (s *Set) Stats() Stats {
	var st Stats
	if s.Brands != nil {
		st.Brands = len(s.Brands.Brands)
		for _, b := range s.Brands.Brands {
			st.Aliases += len(b.Aliases)
		}
	}
	if s.Categories != nil {
		st.Categories = len(s.Categories.Categories)
		for _, c := range s.Categories.Categories {
			st.Keywords += len(c.Keywords)
		}
	}
	if s.Patterns != nil {
		st.EngineFamilies = len(s.Patterns.EngineFamilies)
		for _, g := range s.Patterns.Groups {
			st.Patterns += len(g)
		}
	}
	return st
}

func readSource(path, embedded string) ([]byte, error) {
	if path == "" {
		data, err := defaults.ReadFile(embedded)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrRegistryLoad, embedded, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRegistryLoad, path, err)
	}
	return data, nil
}

// mappingEntry is one key of a YAML mapping, in document order
type mappingEntry struct {
	key   string
	value *yaml.Node
}

// mappingEntries walks a mapping node in document order. An absent node
// yields no entries.
func mappingEntries(node *yaml.Node) ([]mappingEntry, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	entries := make([]mappingEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		entries = append(entries, mappingEntry{key: node.Content[i].Value, value: node.Content[i+1]})
	}
	return entries, nil
}

func registryLog() *zap.Logger {
	return logger.Named("registry")
}
