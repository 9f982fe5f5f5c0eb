package static

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
)

const cabinsJSON = `{
  "type": "FeatureCollection",
  "name": "cabins",
  "features": [
    {"type": "Feature", "properties": {"id": "cabin-7", "type": "cabin", "label": "Cabin 7"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,0]]]}},
    {"type": "Feature", "id": 12, "properties": {"type": "cabin", "label": 12},
     "geometry": {"type": "Point", "coordinates": [5,5]}},
    {"type": "Feature", "properties": {"id": 3}, "geometry": null}
  ]
}`

const catalogJSON = `{
  "cabin-7": {"title": "Forest Cabin", "capacity": 4, "price": "120 EUR",
              "links": {"bookingUrl": "https://example.com/book", "phone": "+34000"}}
}`

func TestDecodeDataset(t *testing.T) {
	ds, err := DecodeDataset([]byte(cabinsJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Name != "cabins" {
		t.Errorf("expected name cabins, got %q", ds.Name)
	}
	if len(ds.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(ds.Features))
	}

	f0 := ds.Features[0]
	if f0.ID != "cabin-7" || f0.Type != domain.TypeCabin || f0.Label != "Cabin 7" {
		t.Errorf("unexpected feature: %+v", f0)
	}
	if _, ok := f0.Geometry.(orb.Polygon); !ok {
		t.Errorf("expected polygon, got %T", f0.Geometry)
	}

	f1 := ds.Features[1]
	if f1.ID != "12" {
		t.Errorf("expected id from feature member, got %q", f1.ID)
	}
	if f1.Label != "12" {
		t.Errorf("expected numeric label stringified, got %q", f1.Label)
	}
	if f1.Geometry != (orb.Point{5, 5}) {
		t.Errorf("unexpected geometry %v", f1.Geometry)
	}

	if ds.Features[2].ID != "3" || ds.Features[2].Geometry != nil {
		t.Errorf("unexpected null-geometry feature: %+v", ds.Features[2])
	}
}

func TestDecodeDataset_Invalid(t *testing.T) {
	if _, err := DecodeDataset([]byte(`{"type":"Feature"`)); err == nil {
		t.Error("expected error for truncated document")
	}
}

func TestDecodeCatalog(t *testing.T) {
	cat, err := DecodeCatalog([]byte(catalogJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, ok := cat.Lookup("cabin-7")
	if !ok {
		t.Fatal("expected cabin-7")
	}
	if rec.Capacity != "4" {
		t.Errorf("expected capacity 4, got %q", rec.Capacity)
	}
	if rec.Links.BookingURL != "https://example.com/book" {
		t.Errorf("unexpected links %+v", rec.Links)
	}
	if _, ok := cat.Lookup("cabin-8"); ok {
		t.Error("cabin-8 must be missing")
	}
}

func TestSource_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cabins.geojson"), []byte(cabinsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(catalogJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	src := New(Options{Root: dir, CatalogFile: "catalog.json"})
	ctx := context.Background()

	ds, err := src.LoadDataset(ctx, ports.DatasetSpec{Source: "cabins.geojson", Role: domain.RoleCabins})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Role != domain.RoleCabins || len(ds.Features) != 3 {
		t.Errorf("unexpected dataset %s/%s with %d features", ds.Name, ds.Role, len(ds.Features))
	}

	cat, err := src.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat) != 1 {
		t.Errorf("expected 1 record, got %d", len(cat))
	}

	if _, err := src.LoadDataset(ctx, ports.DatasetSpec{Source: "missing.geojson"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSource_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/zones.geojson":
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
		case "/data/catalog.json":
			_, _ = w.Write([]byte(catalogJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := New(Options{Root: srv.URL + "/data", CatalogFile: "catalog.json"})
	ctx := context.Background()

	ds, err := src.LoadDataset(ctx, ports.DatasetSpec{Source: "zones.geojson"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Name != "zones" {
		t.Errorf("expected name from file, got %q", ds.Name)
	}

	if _, err := src.LoadCatalog(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = src.LoadDataset(ctx, ports.DatasetSpec{Source: "paths.geojson"})
	if !errors.Is(err, ErrStatus) {
		t.Errorf("expected ErrStatus, got %v", err)
	}
}

func TestSource_NoCatalogFile(t *testing.T) {
	cat, err := New(Options{Root: t.TempDir()}).LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat) != 0 {
		t.Errorf("expected empty catalog, got %d", len(cat))
	}
}
