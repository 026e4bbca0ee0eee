package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogSource supplies the comparison set used for duplicate detection
type CatalogSource interface {
	ListEntries(ctx context.Context) ([]CatalogEntry, error)
}

// PartRepository persists committed parts
type PartRepository interface {
	SaveParts(ctx context.Context, parts []CommittedPart) error
}

// SearchIndexer pushes committed parts into the storefront search index
type SearchIndexer interface {
	IndexParts(ctx context.Context, parts []CommittedPart) error
}
