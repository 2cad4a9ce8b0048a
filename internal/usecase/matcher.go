package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/gemgem/backend/internal/domain"
	"github.com/gemgem/backend/internal/infrastructure/embed"
)

const (
	// DefaultTopN is the number of competitor matches returned per query
	DefaultTopN = 5
	// DefaultScoreThreshold is the similarity floor used for the corpus-wide
	// match rate
	DefaultScoreThreshold = 0.05
)

// MatcherConfig holds configuration for the similarity matcher
type MatcherConfig struct {
	TopN           int
	ScoreThreshold float64
}

// Matcher ranks competitor listings by cosine similarity of their attribute
// text embeddings to a target listing. Competitor embeddings are precomputed
// in the corpus snapshot; only the target is embedded per query.
type Matcher struct {
	embedder       domain.Embedder
	topN           int
	scoreThreshold float64
}

// NewMatcher creates a matcher with the given configuration, applying
// defaults for zero values
func NewMatcher(embedder domain.Embedder, config MatcherConfig) *Matcher {
	topN := config.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	threshold := config.ScoreThreshold
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	return &Matcher{
		embedder:       embedder,
		topN:           topN,
		scoreThreshold: threshold,
	}
}

// FindSimilar returns the topN most similar competitors to the target
// listing, their average clean price, and the share of the full competitor
// pool scoring at or above the threshold. topN <= 0 uses the configured
// default. Returns ErrListingNotFound for an unknown target and
// ErrEmbeddingUnavailable when the embedding service cannot be reached.
func (m *Matcher) FindSimilar(ctx context.Context, targetID string, snapshot *domain.CorpusSnapshot, topN int) (*domain.SimilarityResult, error) {
	if snapshot == nil {
		return nil, domain.ErrCorpusNotReady
	}
	target, ok := snapshot.TargetByID(targetID)
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	if topN <= 0 {
		topN = m.topN
	}

	result := &domain.SimilarityResult{TargetID: targetID, Matches: []domain.Match{}}
	if len(snapshot.Competitors) == 0 {
		return result, nil
	}

	targetVec, err := m.embedder.Embed(ctx, target.EmbeddingText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	scores := make([]float64, len(snapshot.Competitors))
	for i, vec := range snapshot.CompetitorEmbeddings {
		scores[i] = float64(embed.CosineSimilarity(targetVec, vec))
	}

	// Rank by score descending; stable so ties keep corpus order
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topN > len(order) {
		topN = len(order)
	}

	var priceSum float64
	var priced int
	for _, idx := range order[:topN] {
		record := snapshot.Competitors[idx]
		result.Matches = append(result.Matches, domain.Match{Record: record, Score: scores[idx]})
		if record.CleanPrice != nil {
			priceSum += *record.CleanPrice
			priced++
		}
	}
	if priced > 0 {
		result.AvgMatchPrice = round2(priceSum / float64(priced))
	}

	// Corpus-wide density, distinct from the topN selection
	above := 0
	for _, score := range scores {
		if score >= m.scoreThreshold {
			above++
		}
	}
	result.MatchRatePct = round2(float64(above) / float64(len(scores)) * 100)

	return result, nil
}
