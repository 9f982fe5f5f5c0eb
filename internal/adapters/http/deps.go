package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/territorymap/internal/adapters/postgres"
	"github.com/samirrijal/territorymap/internal/adapters/valkey"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Scenes   *usecases.SceneService
	Sessions *usecases.SessionService
	Renders  *usecases.RenderService
	// Feed relays selection events to WebSocket clients; nil disables /ws.
	Feed  ports.SelectionFeed
	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
	// RateLimit is requests per minute per IP; zero uses the default.
	RateLimit int
	Version   string
}
