package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/territorymap/internal/adapters/http"
	natsadapter "github.com/samirrijal/territorymap/internal/adapters/nats"
	"github.com/samirrijal/territorymap/internal/adapters/postgres"
	"github.com/samirrijal/territorymap/internal/adapters/snapshot"
	"github.com/samirrijal/territorymap/internal/adapters/static"
	"github.com/samirrijal/territorymap/internal/adapters/svg"
	"github.com/samirrijal/territorymap/internal/adapters/valkey"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/core/usecases"
	"github.com/samirrijal/territorymap/internal/pkg/config"
	"github.com/samirrijal/territorymap/internal/pkg/logging"
	"github.com/samirrijal/territorymap/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("territorymap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Datasets always come from the static source; the catalog may live in Postgres.
	source := static.New(static.Options{
		Root:        cfg.Data.Root,
		CatalogFile: cfg.Data.CatalogFile,
		Timeout:     cfg.DataTimeout(),
	})
	var catalog ports.CatalogRepository = source

	var db *postgres.DB
	if cfg.Catalog.Source == "postgres" {
		db, err = postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		catalog = postgres.NewCatalogRepo(db)
	}

	// Cache
	var cache *valkey.Cache
	var renderCache ports.CacheService
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			renderCache = cache
		}
	}

	// NATS
	var publisher ports.EventPublisher
	var feed ports.SelectionFeed
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATSMaxAge())
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			sub := natsadapter.NewSubscriber(pub.Conn())
			defer sub.Close()
			publisher, feed, natsConn = pub, sub, pub.Conn()
		}
	}

	renderers := []ports.Renderer{svg.NewRenderer()}
	if cfg.Snapshot.Enabled {
		renderers = append(renderers, snapshot.NewRenderer(snapshot.Options{
			ExecPath:  cfg.Snapshot.ChromePath,
			Timeout:   cfg.SnapshotTimeout(),
			NoSandbox: cfg.Snapshot.NoSandbox,
		}))
	}

	// Use cases
	composer := usecases.NewLayerComposer(cfg.ComposerOptions())
	sceneSvc := usecases.NewSceneService(source, catalog, composer, cfg.SceneOptions())
	if _, err := sceneSvc.Load(ctx); err != nil {
		// The API stays up and reports the load notice until a reload succeeds.
		slog.Error("initial scene load failed", "error", err)
	}
	sessionSvc := usecases.NewSessionService(sceneSvc, cfg.Labels, publisher, cfg.ViewportOptions())
	renderSvc := usecases.NewRenderService(composer, renderCache, cfg.Valkey.TTL, renderers...)

	go sweepSessions(ctx, sessionSvc, cfg.SessionTTL())

	deps := &http.Dependencies{
		Scenes:    sceneSvc,
		Sessions:  sessionSvc,
		Renders:   renderSvc,
		Feed:      feed,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
		RateLimit: cfg.Server.RateLimit,
		Version:   version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Territory Map API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,HEAD,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		AllowCredentials: false,
		MaxAge:           3600,
	}))
	if cfg.Server.AssetsDir != "" {
		app.Static("/assets", cfg.Server.AssetsDir)
	}

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// sweepSessions drops idle viewer sessions until ctx is cancelled.
func sweepSessions(ctx context.Context, sessions *usecases.SessionService, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ttl); n > 0 {
				slog.Debug("idle sessions swept", "removed", n, "active", sessions.Count())
			}
		}
	}
}
