package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/bamsammich/wrench/internal/engine"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "gen-docs",
		Short:  "Generate documentation for wrench",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE:   runGenDocs,
	}
	cmd.Flags().String("dir", "docs", "output directory")
	cmd.Flags().String("format", "man", "output format (man or markdown)")
	return cmd
}

func runGenDocs(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")       //nolint:errcheck // flag name is hardcoded
	format, _ := cmd.Flags().GetString("format") //nolint:errcheck // flag name is hardcoded

	if err := engine.MkdirAll(dir, 0o755, engine.Options{}); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Use the parent command (root) to generate docs for all commands.
	root := cmd.Root()

	switch format {
	case "man":
		header := &doc.GenManHeader{
			Title:   "WRENCH",
			Section: "1",
			Source:  "wrench " + version,
		}
		return doc.GenManTree(root, header, dir)
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	default:
		return fmt.Errorf("unknown format %q (use man or markdown)", format)
	}
}
