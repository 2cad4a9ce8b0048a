package usecase

import (
	"context"
	"log"
	"time"

	"github.com/gemgem/backend/internal/domain"
	"github.com/gemgem/backend/internal/infrastructure/corpus"
)

// ComparisonService ties the retail estimate and the similarity search into
// one comparison result per listing
type ComparisonService struct {
	store     *corpus.Store
	estimator *Estimator
	matcher   *Matcher
	sink      domain.MismatchSink
}

// NewComparisonService creates a comparison service. sink may be nil when
// mismatch diagnostics are disabled.
func NewComparisonService(store *corpus.Store, estimator *Estimator, matcher *Matcher, sink domain.MismatchSink) *ComparisonService {
	return &ComparisonService{
		store:     store,
		estimator: estimator,
		matcher:   matcher,
		sink:      sink,
	}
}

// Snapshot returns the active corpus snapshot, or ErrCorpusNotReady
func (s *ComparisonService) Snapshot() (*domain.CorpusSnapshot, error) {
	snapshot := s.store.Current()
	if snapshot == nil {
		return nil, domain.ErrCorpusNotReady
	}
	return snapshot, nil
}

// Estimate prices a listing against the active snapshot
func (s *ComparisonService) Estimate(ctx context.Context, listingID string) (*domain.PriceBreakdown, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.estimator.Estimate(ctx, listingID, snapshot)
}

// FindSimilar ranks competitors against a listing in the active snapshot
func (s *ComparisonService) FindSimilar(ctx context.Context, listingID string, topN int) (*domain.SimilarityResult, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.matcher.FindSimilar(ctx, listingID, snapshot, topN)
}

// Compare runs the full pipeline for one listing: resolve the target,
// estimate its retail price, rank competitors, and fold both into a single
// result. When the listing is priced above the competitor average, a
// diagnostic record is emitted to the mismatch sink as a side effect.
func (s *ComparisonService) Compare(ctx context.Context, listingID string) (*domain.ComparisonResult, error) {
	start := time.Now()

	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	target, ok := snapshot.TargetByID(listingID)
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	breakdown, err := s.estimator.Estimate(ctx, listingID, snapshot)
	if err != nil {
		return nil, err
	}

	similarity, err := s.matcher.FindSimilar(ctx, listingID, snapshot, 0)
	if err != nil {
		return nil, err
	}

	var targetPrice float64
	if target.CleanPrice != nil {
		targetPrice = *target.CleanPrice
	}

	savings := similarity.AvgMatchPrice - targetPrice
	var savingsPct float64
	if similarity.AvgMatchPrice != 0 {
		savingsPct = round2(savings / similarity.AvgMatchPrice * 100)
	}

	result := &domain.ComparisonResult{
		ListingID:          listingID,
		ListingName:        target.Name,
		TargetPrice:        targetPrice,
		CompetitorAvgPrice: similarity.AvgMatchPrice,
		RetailEstimate:     breakdown.RetailPrice,
		Savings:            round2(savings),
		SavingsPct:         savingsPct,
		MatchRatePct:       similarity.MatchRatePct,
		ProcessingTimeMS:   time.Since(start).Milliseconds(),
		SimilarProducts:    similarity.Matches,
	}

	if targetPrice > similarity.AvgMatchPrice && s.sink != nil {
		event := domain.MismatchEvent{
			GemgemListingID:    listingID,
			GemgemPrice:        targetPrice,
			CompetitorAvgPrice: similarity.AvgMatchPrice,
			SimilarProducts:    similarity.Matches,
		}
		if err := s.sink.Record(event); err != nil {
			// Diagnostics must never fail the request
			log.Printf("[COMPARE] failed to record mismatch for %s: %v", listingID, err)
		}
	}

	return result, nil
}
