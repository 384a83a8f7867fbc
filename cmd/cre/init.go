package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cre/internal/config"
	"cre/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace",
	Long: `Create a cre.toml workspace manifest and a default .cre/config.json in
the target directory. Existing files are left untouched.

Examples:
  cre init
  cre init --root /path/to/project`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root := rootFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		root = wd
	}

	manifestPath := filepath.Join(root, project.ManifestFile)
	if _, err := os.Stat(manifestPath); err == nil {
		fmt.Printf("Manifest already exists: %s\n", manifestPath)
	} else {
		name := filepath.Base(root)
		if err := project.Write(manifestPath, project.DefaultManifest(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created %s\n", manifestPath)
	}

	configPath := filepath.Join(root, ".cre", "config.json")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
	} else {
		if err := config.DefaultConfig().Save(root); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created %s\n", configPath)
	}
}
