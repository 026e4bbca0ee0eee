package registry

import (
	"fmt"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type brandFile struct {
	FuzzyThreshold float64              `yaml:"fuzzy_match_threshold"`
	Unknown        domain.BrandIdentity `yaml:"unknown_brand"`
	Brands         yaml.Node            `yaml:"brands"`
}

type brandYAML struct {
	Canonical string   `yaml:"canonical"`
	Slug      string   `yaml:"slug"`
	Aliases   []string `yaml:"aliases"`
}

// ParseBrands decodes a brand registry document. Brands keep their document
// order; entries without a canonical name or slug are skipped.
func ParseBrands(data []byte) (*domain.BrandRegistry, error) {
	var file brandFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: brands: %v", domain.ErrRegistryLoad, err)
	}

	entries, err := mappingEntries(&file.Brands)
	if err != nil {
		return nil, fmt.Errorf("%w: brands: %v", domain.ErrRegistryLoad, err)
	}

	registry := &domain.BrandRegistry{
		Unknown:        file.Unknown,
		FuzzyThreshold: file.FuzzyThreshold,
	}
	if registry.Unknown.Canonical == "" {
		registry.Unknown = domain.BrandIdentity{Canonical: "Unknown", Slug: "unknown"}
	}

	for _, e := range entries {
		var b brandYAML
		if err := e.value.Decode(&b); err != nil {
			registryLog().Warn("Skipping malformed brand", zap.String("brand", e.key), zap.Error(err))
			continue
		}
		if strings.TrimSpace(b.Canonical) == "" || strings.TrimSpace(b.Slug) == "" {
			registryLog().Warn("Skipping brand without canonical name or slug", zap.String("brand", e.key))
			continue
		}

		aliases := make([]string, 0, len(b.Aliases))
		for _, a := range b.Aliases {
			if strings.TrimSpace(a) != "" {
				aliases = append(aliases, a)
			}
		}

		registry.Brands = append(registry.Brands, domain.BrandEntry{
			Key:       e.key,
			Canonical: b.Canonical,
			Slug:      b.Slug,
			Aliases:   aliases,
		})
	}

	return registry, nil
}
