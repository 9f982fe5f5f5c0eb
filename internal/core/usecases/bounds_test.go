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

func dataset(role domain.Role, geoms ...orb.Geometry) *domain.Dataset {
	ds := &domain.Dataset{Name: string(role), Role: role}
	for _, g := range geoms {
		ds.Features = append(ds.Features, domain.Feature{Geometry: g})
	}
	return ds
}

func TestComputeBounds_Square(t *testing.T) {
	ds := dataset(domain.RoleCabins, orb.MultiPoint{{0, 0}, {10, 0}, {10, 10}, {0, 10}})

	bbox := usecases.ComputeBounds(ds)

	assert.Equal(t, domain.BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, bbox)
	assert.False(t, bbox.IsDegenerate())
}

func TestComputeBounds_SinglePointIsDegenerate(t *testing.T) {
	bbox := usecases.ComputeBounds(dataset(domain.RolePOI, orb.Point{5, 5}))

	assert.Equal(t, 5.0, bbox.MinX)
	assert.Equal(t, 5.0, bbox.MaxX)
	assert.Equal(t, 5.0, bbox.MinY)
	assert.Equal(t, 5.0, bbox.MaxY)
	assert.True(t, bbox.IsDegenerate())
}

func TestComputeBounds_EmptyInput(t *testing.T) {
	bbox := usecases.ComputeBounds()

	assert.True(t, math.IsInf(bbox.MinX, 1))
	assert.True(t, math.IsInf(bbox.MaxX, -1))
	assert.True(t, bbox.IsDegenerate())

	bbox = usecases.ComputeBounds(&domain.Dataset{Name: "empty"}, nil)
	assert.True(t, bbox.IsDegenerate())
}

func TestComputeBounds_FoldsEveryVariantAcrossDatasets(t *testing.T) {
	zones := dataset(domain.RoleZones,
		orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}},
		orb.MultiPolygon{{{{-2, 1}, {-1, 1}, {-1, 2}, {-2, 1}}}},
	)
	paths := dataset(domain.RolePaths,
		orb.LineString{{1, 1}, {3, 9}},
		orb.MultiLineString{{{2, 2}, {2, -3}}},
	)
	poi := dataset(domain.RolePOI,
		orb.Collection{orb.Point{7, 1}, orb.Ring{{0, 0}, {1, 1}, {0, 1}, {0, 0}}},
	)

	bbox := usecases.ComputeBounds(zones, paths, poi)

	assert.Equal(t, domain.BoundingBox{MinX: -2, MinY: -3, MaxX: 7, MaxY: 9}, bbox)
}

func TestComputeBounds_DoesNotMutateInput(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 0}}}
	ds := dataset(domain.RoleZones, poly)

	_ = usecases.ComputeBounds(ds)

	require.Len(t, ds.Features, 1)
	assert.Equal(t, orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 0}}}, ds.Features[0].Geometry)
}

func TestBoundingBox_MarshalDegenerate(t *testing.T) {
	data, err := domain.EmptyBounds().MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"min_x":null,"min_y":null,"max_x":null,"max_y":null}`, string(data))
}
