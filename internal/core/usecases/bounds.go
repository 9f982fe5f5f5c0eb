package usecases

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// ComputeBounds returns the union bounding box over every coordinate pair of
// every feature of every dataset. With no coordinates at all the result is
// domain.EmptyBounds; callers check IsDegenerate before transforming.
func ComputeBounds(datasets ...*domain.Dataset) domain.BoundingBox {
	b := domain.EmptyBounds()
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		for _, f := range ds.Features {
			b = foldGeometry(b, f.Geometry)
		}
	}
	return b
}

// foldGeometry extends b over g, dispatching on the geometry variant.
func foldGeometry(b domain.BoundingBox, g orb.Geometry) domain.BoundingBox {
	switch g := g.(type) {
	case nil:
		return b
	case orb.Point:
		return b.Extend(g)
	case orb.MultiPoint:
		return foldPoints(b, g)
	case orb.LineString:
		return foldPoints(b, g)
	case orb.Ring:
		return foldPoints(b, g)
	case orb.MultiLineString:
		for _, ls := range g {
			b = foldPoints(b, ls)
		}
	case orb.Polygon:
		for _, r := range g {
			b = foldPoints(b, r)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, r := range p {
				b = foldPoints(b, r)
			}
		}
	case orb.Collection:
		for _, c := range g {
			b = foldGeometry(b, c)
		}
	case orb.Bound:
		b = b.Extend(g.Min).Extend(g.Max)
	}
	return b
}

func foldPoints(b domain.BoundingBox, pts []orb.Point) domain.BoundingBox {
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}
