package usecases

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/pkg/metrics"
)

// ErrUnsupportedFormat is returned for render formats without a renderer.
var ErrUnsupportedFormat = errors.New("unsupported render format")

// RenderService attaches composed scenes to render targets and caches the
// encoded output per scene version.
type RenderService struct {
	composer  *LayerComposer
	renderers map[string]ports.Renderer
	cache     ports.CacheService
	ttl       int
}

// NewRenderService creates a new RenderService. cache may be nil.
func NewRenderService(composer *LayerComposer, cache ports.CacheService, ttlSeconds int, renderers ...ports.Renderer) *RenderService {
	m := make(map[string]ports.Renderer, len(renderers))
	for _, r := range renderers {
		m[r.Format()] = r
	}
	return &RenderService{composer: composer, renderers: m, cache: cache, ttl: ttlSeconds}
}

// Formats lists the registered output formats.
func (s *RenderService) Formats() []string {
	return slices.Sorted(maps.Keys(s.renderers))
}

// Render encodes scene in format and returns the bytes and content type.
func (s *RenderService) Render(ctx context.Context, format string, scene *domain.Scene) ([]byte, string, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	// Try cache
	cacheKey := fmt.Sprintf("render:%s:%s", format, scene.Version)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			metrics.CacheHits.WithLabelValues("render_" + format).Inc()
			return data, r.ContentType(), nil
		}
		metrics.CacheMisses.WithLabelValues("render_" + format).Inc()
	}

	w, h := CanvasSize(scene)
	target := r.NewTarget(w, h)
	if err := s.composer.Attach(target, scene.Background, scene.Layers); err != nil {
		return nil, "", err
	}
	data, err := target.Encode(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", format, err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
	}
	return data, r.ContentType(), nil
}

// CanvasSize returns a canvas that holds both the background and the
// destination rectangle, so a relaid-out scene is never clipped.
func CanvasSize(scene *domain.Scene) (float64, float64) {
	w := math.Max(scene.Background.Width, scene.Rect.OffsetX+scene.Rect.Width)
	h := math.Max(scene.Background.Height, scene.Rect.OffsetY+scene.Rect.Height)
	return w, h
}
