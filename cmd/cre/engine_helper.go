package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"cre/internal/config"
	"cre/internal/logging"
	"cre/internal/project"
	"cre/internal/retrieval"
	"cre/internal/spatial"
	"cre/internal/storage"
	"cre/internal/structural"
	"cre/internal/temporal"
)

var (
	retrieverOnce   sync.Once
	sharedRetriever *retrieval.Retriever
	retrieverErr    error
)

// getRetriever returns a shared retriever, lazily wired on first use:
// workspace discovery, config with calibration overlay, the persistent
// timestamp store, and the three analyzers around the file provider.
func getRetriever(logger *logging.Logger) (*retrieval.Retriever, error) {
	retrieverOnce.Do(func() {
		root, workspace, err := resolveWorkspace()
		if err != nil {
			retrieverErr = err
			return
		}

		cfg, err := config.LoadWithCalibration(root, logger)
		if err != nil {
			retrieverErr = err
			return
		}

		store := openTimestampStore(root, logger)
		provider, err := newFileProvider(candidatesFlag)
		if err != nil {
			retrieverErr = err
			return
		}

		r, err := retrieval.NewRetriever(
			provider,
			temporal.NewAnalyzer(store, logger),
			spatial.NewResolver(workspace, logger),
			structural.NewAnalyzer(logger),
			cfg,
			logger,
		)
		if err != nil {
			retrieverErr = err
			return
		}

		if workspace != nil && workspace.Manifest.Language != "" {
			r.SetLanguage(workspace.Manifest.Language)
		}

		sharedRetriever = r
	})

	return sharedRetriever, retrieverErr
}

// mustGetRetriever returns the shared retriever or exits on error.
func mustGetRetriever(logger *logging.Logger) *retrieval.Retriever {
	r, err := getRetriever(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing retriever: %v\n", err)
		os.Exit(1)
	}
	return r
}

// resolveWorkspace picks the workspace root: the --root flag wins,
// otherwise an upward cre.toml search from the working directory. A
// missing manifest is fine; proximity walks are just unavailable.
func resolveWorkspace() (string, *project.Info, error) {
	startDir := rootFlag
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, err
		}
		startDir = wd
	}

	workspace, err := project.Find(startDir)
	if err != nil {
		return "", nil, err
	}
	if workspace != nil {
		return workspace.Root, workspace, nil
	}
	return startDir, nil, nil
}

// openTimestampStore opens the SQLite-backed store, degrading to an
// in-memory store when persistence is unavailable. A broken cache must
// never fail a query.
func openTimestampStore(root string, logger *logging.Logger) temporal.TimestampStore {
	db, err := storage.Open(root, logger)
	if err != nil {
		logger.Warn("Timestamp persistence unavailable, using in-memory store", map[string]interface{}{
			"error": err.Error(),
		})
		return temporal.NewMemoryStore()
	}

	tdb, err := storage.NewTimestampDB(db, logger)
	if err != nil {
		db.Close()
		logger.Warn("Timestamp persistence unavailable, using in-memory store", map[string]interface{}{
			"error": err.Error(),
		})
		return temporal.NewMemoryStore()
	}

	return tdb
}

// mustTimestampDB opens the persistent store directly, for commands
// that operate on it (snapshot export/import).
func mustTimestampDB(logger *logging.Logger) *storage.TimestampDB {
	root, _, err := resolveWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := storage.Open(root, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	tdb, err := storage.NewTimestampDB(db, logger)
	if err != nil {
		db.Close()
		fmt.Fprintf(os.Stderr, "Error opening timestamp store: %v\n", err)
		os.Exit(1)
	}

	return tdb
}

// newContext creates a context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger creates a logger matching the output format.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  logging.InfoLevel,
	})
}
