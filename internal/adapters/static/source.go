// Package static loads GeoJSON datasets and the catalog from a directory or
// from a base URL serving the same files.
package static

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/valyala/fasthttp"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
)

// ErrStatus marks a non-2xx response from a remote source.
var ErrStatus = errors.New("unexpected status")

// Options configures a Source.
type Options struct {
	// Root is a directory, or an http(s) base URL.
	Root string
	// CatalogFile is resolved against Root.
	CatalogFile string
	Timeout     time.Duration
}

// Source implements ports.DatasetSource and ports.CatalogRepository.
type Source struct {
	root    string
	remote  bool
	catalog string
	timeout time.Duration
	client  *fasthttp.Client
}

// New creates a Source.
func New(opts Options) *Source {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	remote := strings.HasPrefix(opts.Root, "http://") || strings.HasPrefix(opts.Root, "https://")
	s := &Source{
		root:    opts.Root,
		remote:  remote,
		catalog: opts.CatalogFile,
		timeout: timeout,
	}
	if remote {
		s.client = &fasthttp.Client{
			Name:                "territorymap",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		}
	}
	return s
}

// LoadDataset fetches and decodes one FeatureCollection.
func (s *Source) LoadDataset(ctx context.Context, spec ports.DatasetSpec) (*domain.Dataset, error) {
	data, err := s.fetch(ctx, spec.Source)
	if err != nil {
		return nil, err
	}
	ds, err := DecodeDataset(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", spec.Source, err)
	}
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(path.Base(spec.Source), path.Ext(spec.Source))
	}
	ds.Role = spec.Role
	return ds, nil
}

// LoadCatalog fetches and decodes the catalog document.
func (s *Source) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	if s.catalog == "" {
		return domain.Catalog{}, nil
	}
	data, err := s.fetch(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	return DecodeCatalog(data)
}

// DecodeCatalog parses an id -> record JSON object.
func DecodeCatalog(data []byte) (domain.Catalog, error) {
	var cat domain.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if cat == nil {
		cat = domain.Catalog{}
	}
	return cat, nil
}

// DecodeDataset parses a GeoJSON FeatureCollection. The collection's "name"
// member becomes the dataset name; id, type and label are read from each
// feature's properties, falling back to the feature id.
func DecodeDataset(data []byte) (*domain.Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	ds := &domain.Dataset{Features: make([]domain.Feature, 0, len(fc.Features))}
	if name, ok := fc.ExtraMembers["name"].(string); ok {
		ds.Name = name
	}

	for _, gf := range fc.Features {
		if gf == nil {
			continue
		}
		props := map[string]any(gf.Properties)
		f := domain.Feature{
			ID:         domain.StringifyProperty(props["id"]),
			Type:       domain.StringifyProperty(props["type"]),
			Label:      domain.StringifyProperty(props["label"]),
			Properties: props,
		}
		if f.ID == "" {
			f.ID = domain.StringifyProperty(gf.ID)
		}
		if gf.Geometry != nil {
			f.Geometry = gf.Geometry
		}
		ds.Features = append(ds.Features, f)
	}
	return ds, nil
}

func (s *Source) fetch(ctx context.Context, name string) ([]byte, error) {
	if s.remote {
		return s.fetchRemote(ctx, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, filepath.FromSlash(name))
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func (s *Source) fetchRemote(ctx context.Context, name string) ([]byte, error) {
	u, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/geo+json, application/json")

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("get %s: %w", u, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, fmt.Errorf("get %s: %w %d", u, ErrStatus, code)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func (s *Source) resolve(name string) (string, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(strings.TrimSuffix(s.root, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parse root: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
