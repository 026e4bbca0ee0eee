package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// DefaultIndex is the index committed parts are pushed to
const DefaultIndex = "parts"

// Document is the searchable shape of a committed part
type Document struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Slug        string                 `json:"slug"`
	Brand       string                 `json:"brand"`
	BrandSlug   string                 `json:"brand_slug"`
	Category    string                 `json:"category"`
	SKU         string                 `json:"sku,omitempty"`
	Price       string                 `json:"price,omitempty"`
	Description string                 `json:"description,omitempty"`
	BatchID     string                 `json:"batch_id"`
	Specs       map[string]interface{} `json:"specs"`
	CreatedAt   int64                  `json:"created_at"`
}

// Indexer pushes committed parts into a Meilisearch index. It implements
// domain.SearchIndexer.
type Indexer struct {
	client    meilisearch.ServiceManager
	indexName string
	log       *zap.Logger
}

// NewIndexer creates an indexer for the Meilisearch instance at url
func NewIndexer(url, apiKey, indexName string) *Indexer {
	if strings.TrimSpace(indexName) == "" {
		indexName = DefaultIndex
	}
	return &Indexer{
		client:    meilisearch.New(url, meilisearch.WithAPIKey(apiKey)),
		indexName: indexName,
		log:       logger.Named("search").With(zap.String("index", indexName)),
	}
}

// EnsureIndex creates the index and applies its settings. Both calls are
// enqueued tasks; an already existing index fails its task, not this call.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	if _, err := i.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        i.indexName,
		PrimaryKey: "id",
	}); err != nil {
		return fmt.Errorf("failed to create index %s: %w", i.indexName, err)
	}

	settings := meilisearch.Settings{
		SearchableAttributes: []string{"name", "brand", "sku", "description"},
		FilterableAttributes: []string{"brand_slug", "category", "batch_id"},
		SortableAttributes:   []string{"name", "created_at"},
	}
	if _, err := i.client.Index(i.indexName).UpdateSettingsWithContext(ctx, &settings); err != nil {
		return fmt.Errorf("failed to update settings for %s: %w", i.indexName, err)
	}
	return nil
}

// IndexParts adds or replaces one document per part
func (i *Indexer) IndexParts(ctx context.Context, parts []domain.CommittedPart) error {
	if len(parts) == 0 {
		return nil
	}

	docs := make([]Document, len(parts))
	for n, p := range parts {
		docs[n] = NewDocument(p)
	}

	task, err := i.client.Index(i.indexName).AddDocumentsWithContext(ctx, docs, nil)
	if err != nil {
		return fmt.Errorf("failed to index %d parts: %w", len(parts), err)
	}

	i.log.Info("Enqueued part documents",
		zap.Int("count", len(docs)),
		zap.Int64("task_uid", task.TaskUID),
	)
	return nil
}

// NewDocument flattens a committed part into its search document
func NewDocument(p domain.CommittedPart) Document {
	return Document{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Brand:       p.Brand,
		BrandSlug:   p.BrandSlug,
		Category:    p.Category,
		SKU:         p.SKU,
		Price:       p.Price,
		Description: p.Description,
		BatchID:     p.BatchID,
		Specs:       p.Metadata.ToMap(),
		CreatedAt:   p.CreatedAt.Unix(),
	}
}
