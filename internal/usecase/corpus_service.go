package usecase

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/gemgem/backend/internal/domain"
	"github.com/gemgem/backend/internal/infrastructure/corpus"
)

// CorpusService loads the datasets, normalizes and filters the records,
// precomputes competitor embeddings and installs the result as the active
// snapshot. A failed refresh leaves the previous snapshot serving.
type CorpusService struct {
	loader     domain.CorpusLoader
	embedder   domain.Embedder
	normalizer *Normalizer
	store      *corpus.Store
	version    atomic.Int64
}

// NewCorpusService creates a corpus service
func NewCorpusService(loader domain.CorpusLoader, embedder domain.Embedder, normalizer *Normalizer, store *corpus.Store) *CorpusService {
	return &CorpusService{
		loader:     loader,
		embedder:   embedder,
		normalizer: normalizer,
		store:      store,
	}
}

// Refresh builds a complete new snapshot and swaps it in atomically.
// Must complete once before any query is served.
func (s *CorpusService) Refresh(ctx context.Context) (*domain.CorpusSnapshot, error) {
	targetsRaw, err := s.loader.LoadTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading target catalog: %w", err)
	}
	competitorsRaw, err := s.loader.LoadCompetitors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading competitor catalogs: %w", err)
	}

	targets := s.normalizer.NormalizeAll(targetsRaw)
	competitors := s.normalizer.NormalizeAll(competitorsRaw)

	texts := make([]string, len(competitors))
	for i, rec := range competitors {
		texts[i] = rec.EmbeddingText
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding competitor corpus: %w", err)
	}

	snapshot := domain.NewCorpusSnapshot(s.version.Add(1), targets, competitors, embeddings)
	s.store.Swap(snapshot)

	log.Printf("[CORPUS] snapshot v%d active: %d targets (%d raw), %d competitors (%d raw)",
		snapshot.Version, len(targets), len(targetsRaw), len(competitors), len(competitorsRaw))

	return snapshot, nil
}
