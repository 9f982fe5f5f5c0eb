package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/territorymap/internal/pkg/metrics"
)

// APIVersion is reported in the X-API-Version header.
const APIVersion = "1.0.0"

const (
	requestTimeout = 15 * time.Second
	renderTimeout  = 60 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Server spans (no-op unless a tracer provider is installed)
	app.Use(TracingMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	rateLimit := deps.RateLimit
	if rateLimit <= 0 {
		rateLimit = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", APIVersion)
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (fast internal checks, no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Scene
	v1.Get("/scene", timeout.NewWithContext(GetSceneHandler(deps), requestTimeout))
	v1.Get("/scene/summary", timeout.NewWithContext(SceneSummaryHandler(deps), requestTimeout))
	v1.Post("/scene/reload", timeout.NewWithContext(ReloadSceneHandler(deps), requestTimeout))
	v1.Get("/layers", timeout.NewWithContext(ListLayersHandler(deps), requestTimeout))
	v1.Get("/layers/:role", timeout.NewWithContext(GetLayerHandler(deps), requestTimeout))
	v1.Get("/features", timeout.NewWithContext(ListFeaturesHandler(deps), requestTimeout))
	v1.Get("/features/*", timeout.NewWithContext(GetFeatureHandler(deps), requestTimeout))
	v1.Get("/hit", timeout.NewWithContext(HitTestHandler(deps), requestTimeout))
	v1.Get("/project", timeout.NewWithContext(ProjectHandler(deps), requestTimeout))

	// Catalog
	v1.Get("/catalog", timeout.NewWithContext(ListCatalogHandler(deps), requestTimeout))
	v1.Get("/catalog/:id", timeout.NewWithContext(GetCatalogRecordHandler(deps), requestTimeout))

	// Viewer sessions
	v1.Post("/sessions", timeout.NewWithContext(CreateSessionHandler(deps), requestTimeout))
	v1.Get("/sessions/:id", timeout.NewWithContext(withSession(GetSessionHandler(deps)), requestTimeout))
	v1.Delete("/sessions/:id", timeout.NewWithContext(withSession(DeleteSessionHandler(deps)), requestTimeout))
	v1.Post("/sessions/:id/select", timeout.NewWithContext(withSession(SelectHandler(deps)), requestTimeout))
	v1.Post("/sessions/:id/close", timeout.NewWithContext(withSession(CloseSelectionHandler(deps)), requestTimeout))
	v1.Post("/sessions/:id/locate", timeout.NewWithContext(withSession(LocateHandler(deps)), requestTimeout))
	v1.Get("/sessions/:id/marker", timeout.NewWithContext(withSession(GetMarkerHandler(deps)), requestTimeout))

	// Rendering
	v1.Get("/render", ListFormatsHandler(deps))
	v1.Get("/render/:format", timeout.NewWithContext(RenderHandler(deps), renderTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket selection relay
	if deps.Feed != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.Feed)))
	}
}
