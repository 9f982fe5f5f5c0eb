// Command territoryctl loads the configured map offline to render it or
// inspect its layout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/territorymap/internal/adapters/postgres"
	"github.com/samirrijal/territorymap/internal/adapters/static"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/core/usecases"
	"github.com/samirrijal/territorymap/internal/pkg/config"
	"github.com/samirrijal/territorymap/internal/pkg/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "territoryctl",
	Short: "Offline tools for the territory map",
	Long:  "Loads the configured datasets and catalog, then renders or inspects the composed scene.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load("territoryctl")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		// stdout carries command output.
		slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))
		return nil
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// pipeline is the offline equivalent of the API wiring.
type pipeline struct {
	composer *usecases.LayerComposer
	scenes   *usecases.SceneService
	closer   func()
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	source := static.New(static.Options{
		Root:        cfg.Data.Root,
		CatalogFile: cfg.Data.CatalogFile,
		Timeout:     cfg.DataTimeout(),
	})
	var catalog ports.CatalogRepository = source
	closer := func() {}

	if cfg.Catalog.Source == "postgres" {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		catalog = postgres.NewCatalogRepo(db)
		closer = db.Close
	}

	composer := usecases.NewLayerComposer(cfg.ComposerOptions())
	p := &pipeline{
		composer: composer,
		scenes:   usecases.NewSceneService(source, catalog, composer, cfg.SceneOptions()),
		closer:   closer,
	}
	if _, err := p.scenes.Load(ctx); err != nil {
		closer()
		return nil, err
	}
	return p, nil
}

func (p *pipeline) Close() { p.closer() }
