package main

import (
	"fmt"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/registry"
	"github.com/spf13/cobra"
)

func registryCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "Load the configured registries and print what they contain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := registry.Paths{
				Brands:     root.cfg.Registry.BrandsPath,
				Categories: root.cfg.Registry.CategoriesPath,
				Patterns:   root.cfg.Registry.PatternsPath,
			}
			set, err := registry.Load(paths)
			if err != nil {
				return err
			}

			stats := set.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Brands:          %d (%d aliases)\n", stats.Brands, stats.Aliases)
			fmt.Fprintf(out, "Categories:      %d (%d keywords)\n", stats.Categories, stats.Keywords)
			fmt.Fprintf(out, "Engine families: %d\n", stats.EngineFamilies)
			fmt.Fprintf(out, "Spec patterns:   %d\n", stats.Patterns)
			fmt.Fprintf(out, "Sources:         brands=%s categories=%s patterns=%s\n",
				source(paths.Brands), source(paths.Categories), source(paths.Patterns))
			return nil
		},
	}
}

func source(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
