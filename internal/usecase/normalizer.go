package usecase

import (
	"strings"

	"github.com/gemgem/backend/internal/attrs"
	"github.com/gemgem/backend/internal/domain"
)

// exclusionTerms flag listings that are not natural-diamond products.
// Matched as case-insensitive substrings against the listing name and the
// serialized attribute text, not tokenized.
var exclusionTerms = []string{
	"lab grown", "lab-created", "lab created",
	"simulated", "artificial", "moissanite", "man made", "synthetic",
}

// DefaultMinPrice is the floor below which listings are dropped from the
// competitor pool (low-price listings are accessories and plated pieces
// that skew the comparison)
const DefaultMinPrice = 1000.0

// Normalizer turns raw scraped records into clean, filterable records ready
// for embedding and costing
type Normalizer struct {
	minPrice float64
}

// NewNormalizer creates a normalizer with the given minimum price floor.
// Zero or negative floors fall back to the default.
func NewNormalizer(minPrice float64) *Normalizer {
	if minPrice <= 0 {
		minPrice = DefaultMinPrice
	}
	return &Normalizer{minPrice: minPrice}
}

// Normalize is a pure function from a raw record to its normalized form.
// CleanPrice is nil when the raw price has no parseable non-negative number.
// Excluded is set when the price is absent, below the floor, or when the
// name/attribute text carries an exclusion term.
func (n *Normalizer) Normalize(rec domain.ProductRecord) domain.NormalizedRecord {
	out := domain.NormalizedRecord{ProductRecord: rec}

	if price, ok := attrs.CleanNumber(rec.RawPrice); ok {
		out.CleanPrice = &price
	}

	out.EmbeddingText = rec.Attributes.Flatten()

	out.Excluded = n.shouldExclude(out)
	return out
}

// NormalizeAll normalizes a batch and drops excluded records entirely
func (n *Normalizer) NormalizeAll(records []domain.ProductRecord) []domain.NormalizedRecord {
	kept := make([]domain.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		normalized := n.Normalize(rec)
		if normalized.Excluded {
			continue
		}
		kept = append(kept, normalized)
	}
	return kept
}

func (n *Normalizer) shouldExclude(rec domain.NormalizedRecord) bool {
	if rec.CleanPrice == nil || *rec.CleanPrice < n.minPrice {
		return true
	}

	haystack := strings.ToLower(rec.Name + " " + rec.EmbeddingText)
	for _, term := range exclusionTerms {
		if strings.Contains(haystack, term) {
			return true
		}
	}

	return false
}
