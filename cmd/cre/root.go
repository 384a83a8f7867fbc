package main

import (
	"github.com/spf13/cobra"

	"cre/internal/version"
)

var (
	// rootFlag overrides workspace root discovery
	rootFlag string
	// candidatesFlag points at the JSON file of provider candidates
	candidatesFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cre",
	Short: "CRE - Contextual Retrieval Engine",
	Long: `CRE (Contextual Retrieval Engine) ranks source-code fragments by contextual
relevance to a query, fusing semantic similarity with modification recency,
file-path proximity, and structural code properties into one explainable
ranking for downstream AI assistants.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("CRE version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Workspace root (default: discovered via cre.toml from the working directory)")
	rootCmd.PersistentFlags().StringVar(&candidatesFlag, "candidates", "",
		"JSON file of semantic candidates (the external provider's output)")
}
