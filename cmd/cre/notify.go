package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify <path>...",
	Short: "Record file modifications for temporal scoring",
	Long: `Record that the given files were just modified. Editor integrations
call this on save so temporal scoring reflects live activity rather
than extraction-time metadata.

Examples:
  cre notify src/auth/session.go
  cre notify src/a.go src/b.go`,
	Args: cobra.MinimumNArgs(1),
	Run:  runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	r := mustGetRetriever(logger)

	failed := 0
	for _, path := range args {
		if err := r.NotifyModified(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording %s: %v\n", path, err)
			failed++
		}
	}

	recorded := len(args) - failed
	fmt.Printf("Recorded %d modification(s)\n", recorded)
	if failed > 0 {
		os.Exit(1)
	}
}
