// Command ironlog-import restores a backup file into the configured store,
// or exports the store's current contents to a backup file. It is also the
// migration path between the sqlite and postgres backends.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/importer"
	"github.com/claude/ironlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	backupPath := flag.String("path", "", "path to backup file (required)")
	export := flag.Bool("export", false, "write the store contents to -path instead of importing")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *backupPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-import -config config.yaml -path backup.json [-export] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var store storage.Store
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		store, err = storage.OpenPostgres(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.OpenSQLite(cfg.Database.Path)
		if err != nil {
			log.Error("failed to open database", "path", cfg.Database.Path, "error", err)
			os.Exit(1)
		}
	}
	defer store.Close()

	if *export {
		if err := importer.Export(ctx, store, *backupPath); err != nil {
			log.Error("export failed", "error", err)
			os.Exit(1)
		}
		log.Info("export complete", "path", *backupPath)
		return
	}

	imp := importer.New(store, log, *dryRun)
	stats, err := imp.Import(ctx, *backupPath)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import complete",
		"dry_run", *dryRun,
		"exercises", stats.Exercises,
		"sessions", stats.Sessions,
		"routines", stats.Routines,
		"measurements", stats.Measurements,
		"widgets", stats.Widgets,
		"profile", stats.Profile,
		"skipped_sessions", stats.SkippedSessions,
		"skipped_measurements", stats.SkippedMeasurements,
	)
}
