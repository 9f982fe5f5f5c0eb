package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/pkg/metrics"
	"github.com/samirrijal/territorymap/internal/pkg/spatial"
)

// User-visible notices for the load sequence. Details go to the log only.
const (
	ReadyMessage     = "Ready: tap a cabin or zone"
	LoadErrorMessage = "Could not load map data. Please try again later."
)

const tracerName = "github.com/samirrijal/territorymap/internal/core/usecases"

// SceneOptions configures a SceneService.
type SceneOptions struct {
	Datasets   []ports.DatasetSpec
	Background domain.Background
	Layout     Layout
}

// SceneService runs the load pipeline: parallel fetch of the catalog and every
// dataset, then bounds, transform and composition once all have resolved.
type SceneService struct {
	datasets ports.DatasetSource
	catalog  ports.CatalogRepository
	composer *LayerComposer
	opts     SceneOptions

	mu      sync.RWMutex
	raw     []*domain.Dataset
	cat     domain.Catalog
	bbox    domain.BoundingBox
	scene   *domain.Scene
	index   *spatial.Index
	lastErr error
}

// NewSceneService creates a new SceneService.
func NewSceneService(datasets ports.DatasetSource, catalog ports.CatalogRepository, composer *LayerComposer, opts SceneOptions) *SceneService {
	return &SceneService{
		datasets: datasets,
		catalog:  catalog,
		composer: composer,
		opts:     opts,
		bbox:     domain.EmptyBounds(),
	}
}

// Load fetches everything and publishes a new scene. Any failing fetch aborts
// the load; the previously published scene, if any, is kept.
func (s *SceneService) Load(ctx context.Context) (*domain.Scene, error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scene.load",
		trace.WithAttributes(attribute.Int("scene.datasets", len(s.opts.Datasets))))
	defer span.End()

	raw, cat, err := s.fetchAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load aborted")
		metrics.SceneLoadFailures.Inc()
		slog.ErrorContext(ctx, "scene load aborted", "error", err)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}

	bbox := ComputeBounds(raw...)
	if bbox.IsDegenerate() {
		metrics.DegenerateBounds.Inc()
		slog.WarnContext(ctx, "shared bounds are degenerate, layers are drawn untransformed",
			"min_x", bbox.MinX, "min_y", bbox.MinY, "max_x", bbox.MaxX, "max_y", bbox.MaxY)
	}

	rect := DestinationRect(s.opts.Background, s.opts.Layout)

	scene := s.compose(raw, bbox, rect)
	scene.Notice = domain.NewNotice(domain.NoticeInfo, ReadyMessage)
	index := spatial.Build(scene.Layers)

	s.mu.Lock()
	s.raw = raw
	s.cat = cat
	s.bbox = bbox
	s.scene = scene
	s.index = index
	s.lastErr = nil
	s.mu.Unlock()

	for _, l := range scene.Layers {
		metrics.FeaturesRendered.WithLabelValues(string(l.Role)).Set(float64(len(l.Features)))
	}
	metrics.SceneLoadDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("scene.version", scene.Version),
		attribute.Int("scene.features", scene.FeatureCount()),
		attribute.Bool("scene.degenerate", scene.Degenerate),
	)
	slog.InfoContext(ctx, "scene published",
		"version", scene.Version,
		"layers", len(scene.Layers),
		"features", scene.FeatureCount(),
		"catalog_records", len(cat),
		"duration", time.Since(start).String())

	return scene, nil
}

// fetchAll is the fan-out/fan-in barrier over the catalog and all datasets.
func (s *SceneService) fetchAll(ctx context.Context) ([]*domain.Dataset, domain.Catalog, error) {
	g, gctx := errgroup.WithContext(ctx)

	var cat domain.Catalog
	g.Go(func() error {
		ctx, span := otel.Tracer(tracerName).Start(gctx, "scene.fetch_catalog")
		defer span.End()
		c, err := s.catalog.LoadCatalog(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "catalog fetch failed")
			return fmt.Errorf("catalog: %w", err)
		}
		span.SetAttributes(attribute.Int("catalog.records", len(c)))
		cat = c
		return nil
	})

	raw := make([]*domain.Dataset, len(s.opts.Datasets))
	for i, spec := range s.opts.Datasets {
		g.Go(func() error {
			ctx, span := otel.Tracer(tracerName).Start(gctx, "scene.fetch_dataset",
				trace.WithAttributes(
					attribute.String("dataset.source", spec.Source),
					attribute.String("dataset.role", string(spec.Role)),
				))
			defer span.End()
			ds, err := s.datasets.LoadDataset(ctx, spec)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "dataset fetch failed")
				return fmt.Errorf("dataset %s: %w", spec.Source, err)
			}
			span.SetAttributes(attribute.Int("dataset.features", len(ds.Features)))
			if spec.Role != "" {
				ds.Role = spec.Role
			} else if ds.Role == "" {
				ds.Role = domain.Role(ds.Name)
			}
			raw[i] = ds
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if cat == nil {
		cat = domain.Catalog{}
	}
	return raw, cat, nil
}

func (s *SceneService) compose(raw []*domain.Dataset, bbox domain.BoundingBox, rect domain.Rect) *domain.Scene {
	scene := &domain.Scene{
		Background: s.opts.Background,
		Bounds:     bbox,
		Degenerate: bbox.IsDegenerate(),
		Rect:       rect,
		Layers:     s.composer.Compose(raw, bbox, rect),
		LoadedAt:   time.Now().UTC(),
	}
	scene.Version = contentVersion(scene)
	scene.Index()
	return scene
}

// Scene returns the published scene, or ErrSceneNotReady (wrapping the last
// load error) when no load has succeeded yet.
func (s *SceneService) Scene() (*domain.Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scene == nil {
		if s.lastErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSceneNotReady, s.lastErr)
		}
		return nil, domain.ErrSceneNotReady
	}
	return s.scene, nil
}

// Catalog returns the catalog of the published scene.
func (s *SceneService) Catalog() domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Bounds returns the shared source bounding box of the published scene.
func (s *SceneService) Bounds() domain.BoundingBox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bbox
}

// Relayout composes the loaded source datasets into another destination
// rectangle. The published scene is left untouched.
func (s *SceneService) Relayout(rect domain.Rect) (*domain.Scene, error) {
	s.mu.RLock()
	raw, bbox, published := s.raw, s.bbox, s.scene
	s.mu.RUnlock()
	if published == nil {
		return nil, domain.ErrSceneNotReady
	}
	scene := s.compose(raw, bbox, rect)
	scene.LoadedAt = published.LoadedAt
	return scene, nil
}

// FeatureAt returns the topmost rendered feature under a pixel of the published scene.
func (s *SceneService) FeatureAt(x, y float64) (*domain.RenderedFeature, error) {
	s.mu.RLock()
	idx, scene := s.index, s.scene
	s.mu.RUnlock()
	if scene == nil {
		return nil, domain.ErrSceneNotReady
	}
	rf, ok := idx.At(orb.Point{x, y})
	if !ok {
		metrics.HitTests.WithLabelValues("miss").Inc()
		return nil, domain.ErrFeatureNotFound
	}
	metrics.HitTests.WithLabelValues("hit").Inc()
	return rf, nil
}

// ToPixel maps a source coordinate into the published scene's pixel space.
func (s *SceneService) ToPixel(pt orb.Point) (orb.Point, error) {
	s.mu.RLock()
	scene, bbox := s.scene, s.bbox
	s.mu.RUnlock()
	if scene == nil {
		return orb.Point{}, domain.ErrSceneNotReady
	}
	px, _ := TransformPoint(pt, bbox, scene.Rect)
	return px, nil
}

// Ready reports whether a scene is published.
func (s *SceneService) Ready() bool {
	_, err := s.Scene()
	return err == nil
}

// LoadNotice maps a load error to the generic user-visible notice.
func LoadNotice(err error) *domain.Notice {
	if err == nil || !(errors.Is(err, domain.ErrLoad) || errors.Is(err, domain.ErrSceneNotReady)) {
		return nil
	}
	return domain.NewNotice(domain.NoticeError, LoadErrorMessage)
}

// contentVersion hashes what a render depends on, so equal content shares
// render cache entries across processes.
func contentVersion(scene *domain.Scene) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(scene.Background)
	_ = enc.Encode(scene.Rect)
	_ = enc.Encode(scene.Layers)
	return hex.EncodeToString(h.Sum(nil)[:8])
}
