package ports

import (
	"context"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// DatasetSpec names one geometry document and the role it is drawn as.
type DatasetSpec struct {
	// Source is a file name relative to the source root, or a URL path.
	Source string
	// Role overrides the document's own "name" member when set.
	Role domain.Role
}

// DatasetSource loads geometry documents.
type DatasetSource interface {
	LoadDataset(ctx context.Context, spec DatasetSpec) (*domain.Dataset, error)
}

// CatalogRepository loads the feature catalog.
type CatalogRepository interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// CatalogWriter persists catalog records (import tooling).
type CatalogWriter interface {
	UpsertBatch(ctx context.Context, catalog domain.Catalog) (int, error)
}
