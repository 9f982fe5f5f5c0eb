package usecases

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
)

// Layout describes how the scheme rectangle sits on the background raster.
type Layout struct {
	SchemeWidth  float64
	SchemeHeight float64
	// CalibrationX is added to the centering offset. Artwork-specific.
	CalibrationX float64
	OffsetY      float64
	FlipY        bool
}

// DestinationRect centers a scheme narrower than the background horizontally.
func DestinationRect(bg domain.Background, l Layout) domain.Rect {
	r := domain.Rect{
		Width:   l.SchemeWidth,
		Height:  l.SchemeHeight,
		OffsetY: l.OffsetY,
		FlipY:   l.FlipY,
	}
	if l.SchemeWidth < bg.Width {
		r.OffsetX = (bg.Width-l.SchemeWidth)/2 + l.CalibrationX
	}
	return r
}

// ComposerOptions configures a LayerComposer.
type ComposerOptions struct {
	// Order is background-most first. Defaults to domain.DefaultDrawOrder.
	Order []domain.Role
	Style StyleMode
}

// LayerComposer orders datasets, transforms them into one pixel space and
// binds styling and interactions to every feature.
type LayerComposer struct {
	order []domain.Role
	style StyleMode
}

// NewLayerComposer creates a composer.
func NewLayerComposer(opts ComposerOptions) *LayerComposer {
	order := opts.Order
	if len(order) == 0 {
		order = domain.DefaultDrawOrder
	}
	style := opts.Style
	if style == "" {
		style = StyleUniform
	}
	return &LayerComposer{order: slices.Clone(order), style: style}
}

// Order returns the draw order.
func (c *LayerComposer) Order() []domain.Role { return slices.Clone(c.order) }

// Compose transforms each dataset whose role is in the draw order against the
// shared bbox and returns the layers in draw order. Roles outside the order
// are skipped. When two datasets share a role the later one wins.
func (c *LayerComposer) Compose(datasets []*domain.Dataset, bbox domain.BoundingBox, rect domain.Rect) []domain.Layer {
	byRole := make(map[domain.Role]*domain.Dataset, len(datasets))
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		if !slices.Contains(c.order, ds.Role) {
			slog.Debug("composer: skipping dataset with unknown role", "name", ds.Name, "role", ds.Role)
			continue
		}
		byRole[ds.Role] = ds
	}

	layers := make([]domain.Layer, 0, len(byRole))
	for _, role := range c.order {
		ds, ok := byRole[role]
		if !ok {
			continue
		}
		fixed := Transform(ds, bbox, rect)
		layers = append(layers, c.bind(fixed))
	}
	return layers
}

func (c *LayerComposer) bind(ds *domain.Dataset) domain.Layer {
	layer := domain.Layer{
		Role:     ds.Role,
		Name:     ds.Name,
		Features: make([]domain.RenderedFeature, len(ds.Features)),
	}
	for i, f := range ds.Features {
		if f.Key == "" {
			f.Key = fmt.Sprintf("%s/%d", ds.Role, i)
		}
		layer.Features[i] = domain.RenderedFeature{
			Feature: f,
			Style:   StyleFor(c.style, f),
			Marker:  MarkerFor(f),
			Tooltip: f.Label,
		}
	}
	return layer
}

// Attach hands the background and every layer, in order, to the surface.
func (c *LayerComposer) Attach(s ports.Surface, bg domain.Background, layers []domain.Layer) error {
	s.SetBackground(bg)
	for _, l := range layers {
		if err := s.AddLayer(l); err != nil {
			return fmt.Errorf("attach layer %s: %w", l.Role, err)
		}
	}
	return nil
}
