package ports

import (
	"context"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// Surface is the rendering collaborator layers are attached to.
// It owns pan/zoom; the core only hands it pixel-space geometry.
type Surface interface {
	SetBackground(bg domain.Background)
	AddLayer(layer domain.Layer) error
}

// SelectionEvent is emitted on every selection transition.
type SelectionEvent struct {
	SessionID string                 `json:"session_id"`
	Status    domain.SelectionStatus `json:"status"`
	View      *domain.DetailView     `json:"view,omitempty"`
}

// EventPublisher publishes selection transitions to a message broker.
type EventPublisher interface {
	PublishSelection(ctx context.Context, event SelectionEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RenderTarget is a Surface that serializes whatever was attached to it.
type RenderTarget interface {
	Surface
	Encode(ctx context.Context) ([]byte, error)
}

// Renderer produces render targets for one output format.
type Renderer interface {
	Format() string
	ContentType() string
	NewTarget(width, height float64) RenderTarget
}

// SelectionFeed streams published selection events.
type SelectionFeed interface {
	Selections(sessionID string, fn func(data []byte)) (cancel func(), err error)
}
