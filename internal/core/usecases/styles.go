package usecases

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// StyleMode selects the styling function used by the composer.
type StyleMode string

const (
	// StyleUniform outlines every shape the same way.
	StyleUniform StyleMode = "uniform"
	// StyleTyped colors shapes by feature type.
	StyleTyped StyleMode = "typed"
)

var uniformStyle = domain.Style{Color: "#ffffff", Weight: 2, Opacity: 1, FillOpacity: 0}

// StyleFor returns the style of f under mode. Unknown modes fall back to uniform.
func StyleFor(mode StyleMode, f domain.Feature) domain.Style {
	if mode != StyleTyped {
		return uniformStyle
	}
	switch f.Type {
	case domain.TypeZone:
		return domain.Style{Color: "#4CAF50", Weight: 1, Opacity: 1, FillColor: "#4CAF50", FillOpacity: 0.08}
	case domain.TypeCabin:
		return domain.Style{Color: "#ffffff", Weight: 2, Opacity: 1, FillColor: "#ffffff", FillOpacity: 0.05}
	case domain.TypePath:
		return domain.Style{Color: "#ffffff", Weight: 2, Opacity: 0.6}
	default:
		return domain.Style{Color: "#3388ff", Weight: 3, Opacity: 1, FillColor: "#3388ff", FillOpacity: 0.2}
	}
}

// MarkerFor returns the interactive marker for point-like geometries, nil otherwise.
// POIs get the larger selectable radius.
func MarkerFor(f domain.Feature) *domain.Marker {
	switch f.Geometry.(type) {
	case orb.Point, orb.MultiPoint:
	default:
		return nil
	}
	radius := 7.0
	if f.Type == domain.TypePOI {
		radius = 8
	}
	return &domain.Marker{Radius: radius, Weight: 2, Opacity: 0.95, FillOpacity: 0.28}
}
