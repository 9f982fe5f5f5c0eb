package usecases_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

var square = domain.BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

func TestTransform_CenterMapsToCenter(t *testing.T) {
	ds := dataset(domain.RolePOI, orb.Point{5, 5})

	out := usecases.Transform(ds, square, domain.Rect{Width: 100, Height: 100})

	assert.Equal(t, orb.Point{50, 50}, out.Features[0].Geometry)
}

func TestTransform_AppliesOffset(t *testing.T) {
	ds := dataset(domain.RolePOI, orb.Point{0, 10}, orb.Point{10, 0})
	rect := domain.Rect{Width: 1126, Height: 844, OffsetX: 146, OffsetY: 3}

	out := usecases.Transform(ds, square, rect)

	assert.Equal(t, orb.Point{146, 847}, out.Features[0].Geometry)
	assert.Equal(t, orb.Point{1272, 3}, out.Features[1].Geometry)
}

func TestTransform_InteriorPointsStayInRect(t *testing.T) {
	bbox := domain.BoundingBox{MinX: -40, MinY: 12, MaxX: 260, MaxY: 87}
	rects := []domain.Rect{
		{Width: 1126, Height: 844, OffsetX: 146, OffsetY: 0},
		{Width: 300, Height: 200, OffsetX: -25, OffsetY: 40},
		{Width: 64, Height: 480, OffsetX: 7.5, OffsetY: 3.25, FlipY: true},
	}
	const steps = 12
	const tol = 1e-9

	for _, rect := range rects {
		for i := 0; i <= steps; i++ {
			for j := 0; j <= steps; j++ {
				x := bbox.MinX + bbox.Width()*float64(i)/steps
				y := bbox.MinY + bbox.Height()*float64(j)/steps

				px, ok := usecases.TransformPoint(orb.Point{x, y}, bbox, rect)
				require.True(t, ok)
				assert.GreaterOrEqual(t, px[0], rect.OffsetX-tol, "x=%v y=%v rect=%+v", x, y, rect)
				assert.LessOrEqual(t, px[0], rect.OffsetX+rect.Width+tol, "x=%v y=%v rect=%+v", x, y, rect)
				assert.GreaterOrEqual(t, px[1], rect.OffsetY-tol, "x=%v y=%v rect=%+v", x, y, rect)
				assert.LessOrEqual(t, px[1], rect.OffsetY+rect.Height+tol, "x=%v y=%v rect=%+v", x, y, rect)
			}
		}
	}
}

func TestTransform_FlipY(t *testing.T) {
	ds := dataset(domain.RolePOI, orb.Point{0, 0}, orb.Point{10, 10})

	out := usecases.Transform(ds, square, domain.Rect{Width: 100, Height: 100, FlipY: true})

	assert.Equal(t, orb.Point{0, 100}, out.Features[0].Geometry)
	assert.Equal(t, orb.Point{100, 0}, out.Features[1].Geometry)
}

func TestTransform_PreservesVariantAndShape(t *testing.T) {
	ds := dataset(domain.RoleZones,
		orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}, {{2, 2}, {4, 2}, {4, 4}, {2, 2}}},
		orb.MultiLineString{{{0, 0}, {10, 10}}, {{5, 0}}},
		orb.Collection{orb.Point{10, 10}, orb.LineString{{0, 5}, {10, 5}}},
	)

	out := usecases.Transform(ds, square, domain.Rect{Width: 10, Height: 20})

	require.Len(t, out.Features, 3)
	poly, ok := out.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 2)
	assert.Equal(t, orb.Ring{{0, 0}, {10, 0}, {10, 20}, {0, 0}}, poly[0])
	assert.Equal(t, orb.Ring{{2, 4}, {4, 4}, {4, 8}, {2, 4}}, poly[1])

	mls, ok := out.Features[1].Geometry.(orb.MultiLineString)
	require.True(t, ok)
	assert.Equal(t, orb.MultiLineString{{{0, 0}, {10, 20}}, {{5, 0}}}, mls)

	col, ok := out.Features[2].Geometry.(orb.Collection)
	require.True(t, ok)
	assert.Equal(t, orb.Point{10, 20}, col[0])
	assert.Equal(t, orb.LineString{{0, 10}, {10, 10}}, col[1])
}

func TestTransform_DoesNotMutateSource(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 10}}
	ds := dataset(domain.RolePaths, line)
	ds.Features[0].Properties = map[string]any{
		"id":    "p1",
		"style": map[string]any{"dash": "4 2"},
		"tags":  []any{"trail", map[string]any{"season": "summer"}},
	}

	out := usecases.Transform(ds, square, domain.Rect{Width: 100, Height: 100})
	out.Features[0].Properties["id"] = "changed"
	out.Features[0].Properties["style"].(map[string]any)["dash"] = "none"
	tags := out.Features[0].Properties["tags"].([]any)
	tags[0] = "road"
	tags[1].(map[string]any)["season"] = "winter"

	assert.Equal(t, orb.LineString{{0, 0}, {10, 10}}, ds.Features[0].Geometry)
	assert.Equal(t, "p1", ds.Features[0].Properties["id"])
	assert.Equal(t, "4 2", ds.Features[0].Properties["style"].(map[string]any)["dash"])
	srcTags := ds.Features[0].Properties["tags"].([]any)
	assert.Equal(t, "trail", srcTags[0])
	assert.Equal(t, "summer", srcTags[1].(map[string]any)["season"])
	assert.Equal(t, orb.LineString{{0, 0}, {100, 100}}, out.Features[0].Geometry)
}

func TestTransform_DegenerateReturnsUnchangedCopy(t *testing.T) {
	ds := dataset(domain.RolePOI, orb.Point{5, 5})
	bbox := usecases.ComputeBounds(ds)

	out := usecases.Transform(ds, bbox, domain.Rect{Width: 100, Height: 100})

	require.NotSame(t, ds, out)
	pt := out.Features[0].Geometry.(orb.Point)
	assert.Equal(t, orb.Point{5, 5}, pt)
	assert.False(t, math.IsNaN(pt[0]) || math.IsInf(pt[0], 0))
}

func TestTransform_DegenerateCopyIsIndependent(t *testing.T) {
	ds := dataset(domain.RolePaths, orb.LineString{{1, 1}, {1, 1}})

	out := usecases.Transform(ds, domain.EmptyBounds(), domain.Rect{Width: 100, Height: 100})
	out.Features[0].Geometry.(orb.LineString)[0] = orb.Point{9, 9}

	assert.Equal(t, orb.LineString{{1, 1}, {1, 1}}, ds.Features[0].Geometry)
}

// Re-applying the transform against the source bbox compounds normalization.
func TestTransform_IsNotIdempotent(t *testing.T) {
	ds := dataset(domain.RolePOI, orb.Point{5, 5}, orb.Point{2, 8})
	rect := domain.Rect{Width: 100, Height: 100}

	once := usecases.Transform(ds, square, rect)
	twice := usecases.Transform(once, square, rect)

	assert.NotEqual(t, once.Features[0].Geometry, twice.Features[0].Geometry)
	assert.NotEqual(t, once.Features[1].Geometry, twice.Features[1].Geometry)
	assert.Equal(t, orb.Point{500, 500}, twice.Features[0].Geometry)
}

func TestTransform_Order(t *testing.T) {
	ds := dataset(domain.RolePOI, orb.Point{1, 1}, orb.Point{2, 2}, orb.Point{3, 3})
	for i := range ds.Features {
		ds.Features[i].ID = string(rune('a' + i))
	}

	out := usecases.Transform(ds, square, domain.Rect{Width: 10, Height: 10})

	require.Len(t, out.Features, 3)
	assert.Equal(t, "a", out.Features[0].ID)
	assert.Equal(t, "b", out.Features[1].ID)
	assert.Equal(t, "c", out.Features[2].ID)
}

func TestTransformPoint(t *testing.T) {
	px, ok := usecases.TransformPoint(orb.Point{5, 5}, square, domain.Rect{Width: 100, Height: 100})
	assert.True(t, ok)
	assert.Equal(t, orb.Point{50, 50}, px)

	px, ok = usecases.TransformPoint(orb.Point{5, 5}, domain.EmptyBounds(), domain.Rect{Width: 100, Height: 100})
	assert.False(t, ok)
	assert.Equal(t, orb.Point{5, 5}, px)
}
