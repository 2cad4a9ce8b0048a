package domain

import "time"

// CorpusSnapshot is an immutable view of the loaded catalogs plus the
// precomputed competitor embeddings. Built once at startup or on refresh,
// read-only afterwards; queries take a snapshot as an explicit dependency.
type CorpusSnapshot struct {
	Version int64
	BuiltAt time.Time

	// Targets is the GemGem catalog the comparison queries run against
	Targets []NormalizedRecord

	// Competitors is the filtered competitor pool. CompetitorEmbeddings[i]
	// is the embedding of Competitors[i].EmbeddingText.
	Competitors          []NormalizedRecord
	CompetitorEmbeddings [][]float32

	targetIndex map[string]int
}

// NewCorpusSnapshot builds a snapshot and its target lookup index
func NewCorpusSnapshot(version int64, targets, competitors []NormalizedRecord, embeddings [][]float32) *CorpusSnapshot {
	idx := make(map[string]int, len(targets))
	for i, rec := range targets {
		idx[rec.ListingID] = i
	}
	return &CorpusSnapshot{
		Version:              version,
		BuiltAt:              time.Now(),
		Targets:              targets,
		Competitors:          competitors,
		CompetitorEmbeddings: embeddings,
		targetIndex:          idx,
	}
}

// TargetByID resolves a GemGem listing by ID
func (s *CorpusSnapshot) TargetByID(listingID string) (*NormalizedRecord, bool) {
	i, ok := s.targetIndex[listingID]
	if !ok {
		return nil, false
	}
	return &s.Targets[i], true
}
