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

// SpotPriceProvider supplies the current gold price per gram at the given
// purity fraction (0.75 for 18 karat). Implementations must absorb fetch
// failures and return a fallback constant instead of an error.
type SpotPriceProvider interface {
	PricePerGram(ctx context.Context, purity float64) float64
}

// Embedder generates vector embeddings from text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CorpusLoader supplies raw product records from the ingestion datasets
type CorpusLoader interface {
	LoadTargets(ctx context.Context) ([]ProductRecord, error)
	LoadCompetitors(ctx context.Context) ([]ProductRecord, error)
}

// MismatchSink receives diagnostic records for listings priced above the
// competitor average
type MismatchSink interface {
	Record(event MismatchEvent) error
}
