package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or import the timestamp store",
	Long: `Move the modification-timestamp store between machines as a compressed
snapshot file. Import merges: a snapshot entry only wins when it is
newer than the local one.`,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export timestamps to a snapshot file",
	Args:  cobra.ExactArgs(1),
	Run:   runSnapshotExport,
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge timestamps from a snapshot file",
	Args:  cobra.ExactArgs(1),
	Run:   runSnapshotImport,
}

func init() {
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotExport(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	tdb := mustTimestampDB(logger)
	defer tdb.Close()

	if err := tdb.ExportSnapshotFile(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d timestamp(s) to %s\n", tdb.Len(), args[0])
}

func runSnapshotImport(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	tdb := mustTimestampDB(logger)
	defer tdb.Close()

	applied, err := tdb.ImportSnapshotFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Applied %d timestamp(s) from %s\n", applied, args[0])
}
