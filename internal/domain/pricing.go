package domain

// PriceBreakdown is the deterministic costing of a single listing.
// Recomputed per request; never cached across spot price changes.
type PriceBreakdown struct {
	ListingID          string  `json:"listingId"`
	GoldWeightGrams    float64 `json:"goldWeightGrams"`
	GoldPricePerGram   float64 `json:"goldPricePerGram"`
	GoldCost           float64 `json:"goldCost"`
	StonePricePerCarat float64 `json:"stonePricePerCarat"`
	StoneCost          float64 `json:"stoneCost"`
	MakingCharge       float64 `json:"makingCharge"`
	MarkupPct          float64 `json:"markupPct"`
	MarkupValue        float64 `json:"markupValue"`
	RetailPrice        float64 `json:"retailPrice"`
}

// Match pairs a competitor record with its similarity score to the target
type Match struct {
	Record NormalizedRecord `json:"record"`
	Score  float64          `json:"similarityScore"`
}

// SimilarityResult holds the ranked competitor matches for one target listing.
// Matches are ordered by score, non-increasing; ties keep corpus order.
type SimilarityResult struct {
	TargetID      string  `json:"targetId"`
	Matches       []Match `json:"matches"`
	AvgMatchPrice float64 `json:"avgMatchPrice"`
	// MatchRatePct is the share of the FULL competitor pool scoring at or
	// above the threshold, not just the returned matches
	MatchRatePct float64 `json:"matchRatePct"`
}

// ComparisonResult is the combined output of the price estimate and the
// similarity search for one listing.
type ComparisonResult struct {
	ListingID          string  `json:"listingId"`
	ListingName        string  `json:"listingName"`
	TargetPrice        float64 `json:"targetPrice"`
	CompetitorAvgPrice float64 `json:"competitorAvgPrice"`
	RetailEstimate     float64 `json:"retailEstimate"`
	Savings            float64 `json:"savings"`
	SavingsPct         float64 `json:"savingsPct"`
	MatchRatePct       float64 `json:"matchRatePct"`
	ProcessingTimeMS   int64   `json:"processingTimeMs"`
	SimilarProducts    []Match `json:"similarProducts"`
}

// MismatchEvent is one diagnostic record emitted when a target listing is
// priced above the competitor average. Written as one JSON object per line.
type MismatchEvent struct {
	GemgemListingID    string  `json:"gemgem_listing_id"`
	GemgemPrice        float64 `json:"gemgem_price"`
	CompetitorAvgPrice float64 `json:"competitor_avg_price"`
	SimilarProducts    []Match `json:"similar_products"`
}
