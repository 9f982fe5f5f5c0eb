package domain

import (
	"encoding/json"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Role identifies the logical layer a dataset is drawn as.
type Role string

const (
	RoleZones  Role = "zones"
	RolePaths  Role = "paths"
	RoleCabins Role = "cabins"
	RolePOI    Role = "poi"
)

// DefaultDrawOrder is background-most first.
var DefaultDrawOrder = []Role{RoleZones, RolePaths, RoleCabins, RolePOI}

// Feature types found in the "type" property.
const (
	TypeCabin = "cabin"
	TypeZone  = "zone"
	TypePOI   = "poi"
	TypePath  = "path"
)

// Feature is a single shape plus its descriptive properties.
type Feature struct {
	Key        string         `json:"key"`
	ID         string         `json:"id,omitempty"`
	Type       string         `json:"type,omitempty"`
	Label      string         `json:"label,omitempty"`
	Geometry   orb.Geometry   `json:"-"`
	Properties map[string]any `json:"properties,omitempty"`
}

// MarshalJSON emits the geometry as a GeoJSON geometry object.
func (f Feature) MarshalJSON() ([]byte, error) {
	type plain Feature
	var g *geojson.Geometry
	if f.Geometry != nil {
		g = geojson.NewGeometry(f.Geometry)
	}
	return json.Marshal(struct {
		plain
		Geometry *geojson.Geometry `json:"geometry,omitempty"`
	}{plain(f), g})
}

// Dataset is a named, ordered collection of features sharing one layer.
type Dataset struct {
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Features []Feature `json:"features"`
}

// BoundingBox is an axis-aligned box in source coordinate units.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// EmptyBounds returns the sentinel box that every Extend call shrinks into.
func EmptyBounds() BoundingBox {
	return BoundingBox{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// IsDegenerate reports whether the box cannot be used as a transform source:
// any extent that is non-finite or zero.
func (b BoundingBox) IsDegenerate() bool {
	dx, dy := b.Width(), b.Height()
	return math.IsNaN(dx) || math.IsInf(dx, 0) || dx == 0 ||
		math.IsNaN(dy) || math.IsInf(dy, 0) || dy == 0
}

// Extend returns the box grown to include p.
func (b BoundingBox) Extend(p orb.Point) BoundingBox {
	x, y := p[0], p[1]
	if x < b.MinX {
		b.MinX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y > b.MaxY {
		b.MaxY = y
	}
	return b
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Contains reports whether (x, y) lies inside the box, edges included.
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// MarshalJSON writes non-finite edges (the empty sentinel) as null.
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	finite := func(v float64) *float64 {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return json.Marshal(struct {
		MinX *float64 `json:"min_x"`
		MinY *float64 `json:"min_y"`
		MaxX *float64 `json:"max_x"`
		MaxY *float64 `json:"max_y"`
	}{finite(b.MinX), finite(b.MinY), finite(b.MaxX), finite(b.MaxY)})
}

// Rect is a destination rectangle in pixel space.
type Rect struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	// FlipY maps source minY to the bottom edge instead of the top.
	FlipY bool `json:"flip_y,omitempty"`
}
