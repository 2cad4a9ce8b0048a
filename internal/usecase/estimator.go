package usecase

import (
	"context"
	"math"

	"github.com/gemgem/backend/internal/domain"
)

// Pricing schedule defaults. Markup and the making charge vary by retailer
// policy, so they are configuration, not constants of the model.
const (
	DefaultMakingChargePerGram = 20.0
	DefaultMarkupPct           = 15.0
	DefaultNaturalPerCarat     = 1500.0
	DefaultLabPerCarat         = 400.0
	DefaultGoldPurity          = 0.75 // 18 karat

	// settingWeightFactor substitutes for a missing metal weight: the
	// setting is assumed proportional to the stone it holds
	settingWeightFactor = 1.5
)

// EstimatorConfig holds the pricing schedule for the retail estimator
type EstimatorConfig struct {
	MakingChargePerGram float64
	MarkupPct           float64
	NaturalPerCarat     float64
	LabPerCarat         float64
	GoldPurity          float64
}

// Estimator computes a deterministic retail price breakdown for a listing
// from its extracted weights and the current gold spot quote
type Estimator struct {
	spot domain.SpotPriceProvider
	cfg  EstimatorConfig
}

// NewEstimator creates an estimator, filling zero config fields with the
// default schedule
func NewEstimator(spot domain.SpotPriceProvider, cfg EstimatorConfig) *Estimator {
	if cfg.MakingChargePerGram <= 0 {
		cfg.MakingChargePerGram = DefaultMakingChargePerGram
	}
	if cfg.MarkupPct <= 0 {
		cfg.MarkupPct = DefaultMarkupPct
	}
	if cfg.NaturalPerCarat <= 0 {
		cfg.NaturalPerCarat = DefaultNaturalPerCarat
	}
	if cfg.LabPerCarat <= 0 {
		cfg.LabPerCarat = DefaultLabPerCarat
	}
	if cfg.GoldPurity <= 0 {
		cfg.GoldPurity = DefaultGoldPurity
	}
	return &Estimator{spot: spot, cfg: cfg}
}

// Estimate resolves the listing in the snapshot and prices it. Returns
// ErrListingNotFound when the ID has no entry. The result is deterministic
// for a fixed spot quote and snapshot.
func (e *Estimator) Estimate(ctx context.Context, listingID string, snapshot *domain.CorpusSnapshot) (*domain.PriceBreakdown, error) {
	if snapshot == nil {
		return nil, domain.ErrCorpusNotReady
	}
	record, ok := snapshot.TargetByID(listingID)
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	weights := ExtractWeights(record.Attributes)
	return e.Price(ctx, listingID, weights), nil
}

// Price applies the costing formula to already-extracted weights
func (e *Estimator) Price(ctx context.Context, listingID string, weights domain.WeightInfo) *domain.PriceBreakdown {
	goldWeight := weights.MetalWeightGrams
	if goldWeight <= 0 {
		goldWeight = weights.StoneWeightCarats * settingWeightFactor
	}

	goldPricePerGram := e.spot.PricePerGram(ctx, e.cfg.GoldPurity)
	goldCost := goldWeight * goldPricePerGram
	makingCharge := goldWeight * e.cfg.MakingChargePerGram

	stonePerCarat := e.cfg.NaturalPerCarat
	if weights.StoneSource == domain.StoneSourceLab {
		stonePerCarat = e.cfg.LabPerCarat
	}
	stoneCost := weights.StoneWeightCarats * stonePerCarat

	basePrice := goldCost + makingCharge + stoneCost
	markupValue := basePrice * e.cfg.MarkupPct / 100

	return &domain.PriceBreakdown{
		ListingID:          listingID,
		GoldWeightGrams:    goldWeight,
		GoldPricePerGram:   goldPricePerGram,
		GoldCost:           goldCost,
		StonePricePerCarat: stonePerCarat,
		StoneCost:          stoneCost,
		MakingCharge:       makingCharge,
		MarkupPct:          e.cfg.MarkupPct,
		MarkupValue:        markupValue,
		RetailPrice:        round2(basePrice + markupValue),
	}
}

// round2 rounds to two decimal places (currency)
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
