package svg

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

func TestDocument_Encode(t *testing.T) {
	doc := NewDocument(0, 0)
	doc.SetBackground(domain.Background{Href: "assets/base.png?v=1&x=2", Width: 1482, Height: 844})

	err := doc.AddLayer(domain.Layer{Role: domain.RoleCabins, Features: []domain.RenderedFeature{
		{
			Feature: domain.Feature{Key: "cabins/0", ID: "cabin-7", Type: "cabin",
				Geometry: orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}},
			Style:   domain.Style{Color: "#ffffff", Weight: 2, Opacity: 1},
			Tooltip: "Cabin <7>",
		},
		{
			Feature: domain.Feature{Key: "cabins/1", Geometry: orb.Point{5.5, 6}},
			Style:   domain.Style{Color: "#ffffff", Weight: 2, Opacity: 1},
			Marker:  &domain.Marker{Radius: 7, Weight: 2, Opacity: 0.95, FillOpacity: 0.28},
		},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := doc.Encode(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		`width="1482" height="844"`,
		`<image href="assets/base.png?v=1&amp;x=2"`,
		`data-role="cabins"`,
		`data-key="cabins/0" data-id="cabin-7" data-type="cabin"`,
		`<title>Cabin &lt;7&gt;</title>`,
		`d="M0 0 L10 0 L10 10 L0 0 Z"`,
		`fill="none"`,
		`<circle cx="5.5" cy="6" r="7"`,
		`fill-opacity="0.28"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected output to contain %q\n%s", want, s)
		}
	}
	if doc.Layers() != 1 {
		t.Errorf("expected 1 layer, got %d", doc.Layers())
	}
}

func TestDocument_LayerOrder(t *testing.T) {
	doc := NewDocument(100, 100)
	for _, role := range domain.DefaultDrawOrder {
		if err := doc.AddLayer(domain.Layer{Role: role}); err != nil {
			t.Fatal(err)
		}
	}
	out, _ := doc.Encode(context.Background())
	s := string(out)

	last := -1
	for _, role := range domain.DefaultDrawOrder {
		i := strings.Index(s, `data-role="`+string(role)+`"`)
		if i <= last {
			t.Fatalf("layer %s out of order", role)
		}
		last = i
	}
}

func TestDocument_FilledPolygon(t *testing.T) {
	doc := NewDocument(10, 10)
	_ = doc.AddLayer(domain.Layer{Role: domain.RoleZones, Features: []domain.RenderedFeature{{
		Feature: domain.Feature{Key: "zones/0", Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}},
		Style:   domain.Style{Color: "#4CAF50", Weight: 1, Opacity: 1, FillColor: "#4CAF50", FillOpacity: 0.08},
	}}})
	out, _ := doc.Encode(context.Background())

	if !strings.Contains(string(out), `fill="#4CAF50" fill-opacity="0.08"`) {
		t.Errorf("expected filled polygon, got %s", out)
	}
}

func TestRenderer(t *testing.T) {
	r := NewRenderer()
	if r.Format() != "svg" || r.ContentType() != "image/svg+xml" {
		t.Errorf("unexpected renderer %s %s", r.Format(), r.ContentType())
	}
	if _, ok := r.NewTarget(1, 1).(*Document); !ok {
		t.Error("expected *Document target")
	}
}
