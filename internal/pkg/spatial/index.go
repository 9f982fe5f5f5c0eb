package spatial

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// LineTolerance is the minimum pixel distance at which a stroke still counts as hit.
const LineTolerance = 4.0

const epsilon = 1e-6

// Index answers "which rendered feature is under this pixel" over a composed
// scene. Candidates come from an R-tree over padded feature bounds and are
// confirmed against the exact shape.
type Index struct {
	tree *rtreego.Rtree
	size int
}

type entry struct {
	feature *domain.RenderedFeature
	layer   int
	seq     int
	bound   orb.Bound
}

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect {
	w := math.Max(e.bound.Max[0]-e.bound.Min[0], epsilon)
	h := math.Max(e.bound.Max[1]-e.bound.Min[1], epsilon)
	rect, _ := rtreego.NewRect(rtreego.Point{e.bound.Min[0], e.bound.Min[1]}, []float64{w, h})
	return rect
}

// Build indexes every feature of layers. The slices must not be mutated
// afterwards; entries point into them.
func Build(layers []domain.Layer) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	n := 0
	for li := range layers {
		for fi := range layers[li].Features {
			rf := &layers[li].Features[fi]
			if rf.Feature.Geometry == nil {
				continue
			}
			pad := reach(rf)
			b := rf.Feature.Geometry.Bound().Pad(pad)
			tree.Insert(&entry{feature: rf, layer: li, seq: fi, bound: b})
			n++
		}
	}
	return &Index{tree: tree, size: n}
}

// Size returns the number of indexed features.
func (i *Index) Size() int { return i.size }

// At returns the topmost feature containing pt. Later layers win over earlier
// ones, and later features over earlier ones within a layer.
func (i *Index) At(pt orb.Point) (*domain.RenderedFeature, bool) {
	if i == nil || i.size == 0 {
		return nil, false
	}
	q, err := rtreego.NewRect(rtreego.Point{pt[0] - epsilon, pt[1] - epsilon}, []float64{2 * epsilon, 2 * epsilon})
	if err != nil {
		return nil, false
	}

	hits := make([]*entry, 0, 4)
	for _, s := range i.tree.SearchIntersect(q) {
		e := s.(*entry)
		if contains(e.feature, pt) {
			hits = append(hits, e)
		}
	}
	if len(hits) == 0 {
		return nil, false
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].layer != hits[b].layer {
			return hits[a].layer > hits[b].layer
		}
		return hits[a].seq > hits[b].seq
	})
	return hits[0].feature, true
}

// reach is how far from its geometry a feature can still be hit.
func reach(rf *domain.RenderedFeature) float64 {
	if rf.Marker != nil {
		return rf.Marker.Radius
	}
	return math.Max(rf.Style.Weight, LineTolerance)
}

func contains(rf *domain.RenderedFeature, pt orb.Point) bool {
	return hitGeometry(rf.Feature.Geometry, pt, reach(rf))
}

func hitGeometry(g orb.Geometry, pt orb.Point, r float64) bool {
	switch g := g.(type) {
	case orb.Point:
		return planar.Distance(g, pt) <= r
	case orb.MultiPoint:
		for _, p := range g {
			if planar.Distance(p, pt) <= r {
				return true
			}
		}
		return false
	case orb.Polygon:
		return planar.PolygonContains(g, pt) || planar.DistanceFrom(g, pt) <= r
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt) || planar.DistanceFrom(g, pt) <= r
	case orb.LineString, orb.MultiLineString, orb.Ring:
		return planar.DistanceFrom(g, pt) <= r
	case orb.Collection:
		for _, c := range g {
			if hitGeometry(c, pt, r) {
				return true
			}
		}
		return false
	case orb.Bound:
		return g.Pad(r).Contains(pt)
	default:
		return false
	}
}
