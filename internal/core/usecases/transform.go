package usecases

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// Transform maps every coordinate of ds from bbox into rect and returns an
// independent copy; ds itself is never modified. A degenerate bbox turns the
// transform into a plain deep copy instead of dividing by zero.
func Transform(ds *domain.Dataset, bbox domain.BoundingBox, rect domain.Rect) *domain.Dataset {
	if ds == nil {
		return nil
	}

	if bbox.IsDegenerate() {
		return copyDataset(ds, func(g orb.Geometry) orb.Geometry {
			if g == nil {
				return nil
			}
			return orb.Clone(g)
		})
	}

	p := projector{bbox: bbox, rect: rect, dx: bbox.Width(), dy: bbox.Height()}
	return copyDataset(ds, p.geometry)
}

// TransformPoint maps a single source coordinate. ok is false when bbox is
// degenerate and the point is returned unchanged.
func TransformPoint(pt orb.Point, bbox domain.BoundingBox, rect domain.Rect) (orb.Point, bool) {
	if bbox.IsDegenerate() {
		return pt, false
	}
	p := projector{bbox: bbox, rect: rect, dx: bbox.Width(), dy: bbox.Height()}
	return p.point(pt), true
}

func copyDataset(ds *domain.Dataset, geom func(orb.Geometry) orb.Geometry) *domain.Dataset {
	out := &domain.Dataset{
		Name:     ds.Name,
		Role:     ds.Role,
		Features: make([]domain.Feature, len(ds.Features)),
	}
	for i, f := range ds.Features {
		f.Geometry = geom(f.Geometry)
		f.Properties = cloneProperties(f.Properties)
		out.Features[i] = f
	}
	return out
}

// cloneProperties copies a GeoJSON property bag including nested objects and arrays.
func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneProperties(v)
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

type projector struct {
	bbox   domain.BoundingBox
	rect   domain.Rect
	dx, dy float64
}

func (p projector) point(pt orb.Point) orb.Point {
	nx := (pt[0] - p.bbox.MinX) / p.dx
	ny := (pt[1] - p.bbox.MinY) / p.dy
	if p.rect.FlipY {
		ny = 1 - ny
	}
	return orb.Point{p.rect.OffsetX + nx*p.rect.Width, p.rect.OffsetY + ny*p.rect.Height}
}

func (p projector) points(pts []orb.Point) []orb.Point {
	if pts == nil {
		return nil
	}
	out := make([]orb.Point, len(pts))
	for i, pt := range pts {
		out[i] = p.point(pt)
	}
	return out
}

func (p projector) rings(rs []orb.Ring) []orb.Ring {
	if rs == nil {
		return nil
	}
	out := make([]orb.Ring, len(rs))
	for i, r := range rs {
		out[i] = orb.Ring(p.points(r))
	}
	return out
}

// geometry rebuilds g with projected leaves, preserving variant and nesting.
func (p projector) geometry(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case nil:
		return nil
	case orb.Point:
		return p.point(g)
	case orb.MultiPoint:
		return orb.MultiPoint(p.points(g))
	case orb.LineString:
		return orb.LineString(p.points(g))
	case orb.Ring:
		return orb.Ring(p.points(g))
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(g))
		for i, ls := range g {
			out[i] = orb.LineString(p.points(ls))
		}
		return out
	case orb.Polygon:
		return orb.Polygon(p.rings(g))
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, poly := range g {
			out[i] = orb.Polygon(p.rings(poly))
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(g))
		for i, c := range g {
			out[i] = p.geometry(c)
		}
		return out
	case orb.Bound:
		return orb.MultiPoint{p.point(g.Min), p.point(g.Max)}.Bound()
	default:
		return orb.Clone(g)
	}
}
