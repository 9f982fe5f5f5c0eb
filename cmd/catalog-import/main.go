// Command catalog-import copies a catalog document into Postgres.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samirrijal/territorymap/internal/adapters/postgres"
	"github.com/samirrijal/territorymap/internal/adapters/static"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/pkg/config"
	"github.com/samirrijal/territorymap/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("territorymap-catalog-import")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Defaults to the configured catalog; an argument names another file or URL.
	opts := static.Options{
		Root:        cfg.Data.Root,
		CatalogFile: cfg.Data.CatalogFile,
		Timeout:     cfg.DataTimeout(),
	}
	if len(os.Args) > 1 {
		opts.Root, opts.CatalogFile = splitLocation(os.Args[1])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	catalog, err := static.New(opts).LoadCatalog(ctx)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	start := time.Now()
	var writer ports.CatalogWriter = postgres.NewCatalogRepo(db)
	n, err := writer.UpsertBatch(ctx, catalog)
	if err != nil {
		log.Fatalf("upsert: %v", err)
	}
	slog.Info("catalog imported",
		"records", n,
		"source", opts.Root+"/"+opts.CatalogFile,
		"duration", time.Since(start).String(),
	)
}

// splitLocation splits a file path or URL into a root and a file name.
func splitLocation(loc string) (string, string) {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		i := strings.LastIndex(loc, "/")
		return loc[:i], loc[i+1:]
	}
	return filepath.Dir(loc), filepath.Base(loc)
}
