package domain

import "github.com/gemgem/backend/internal/attrs"

// ProductRecord is a single scraped jewelry listing as handed over by the
// ingestion layer. Immutable once constructed.
type ProductRecord struct {
	ListingID  string      `json:"listingId"`
	Name       string      `json:"name"`
	RawPrice   string      `json:"rawPrice"`
	URL        string      `json:"url"`
	Attributes attrs.Value `json:"attributes"`
}

// NormalizedRecord is a ProductRecord after price cleaning, exclusion
// filtering and embedding-text serialization.
type NormalizedRecord struct {
	ProductRecord
	// CleanPrice is nil when RawPrice could not be parsed to a non-negative number
	CleanPrice    *float64 `json:"cleanPrice,omitempty"`
	EmbeddingText string   `json:"embeddingText"`
	Excluded      bool     `json:"excluded"`
}

// StoneSource classifies where a stone came from
type StoneSource string

const (
	StoneSourceNatural StoneSource = "natural"
	StoneSourceLab     StoneSource = "lab"
)

// WeightInfo holds the quantities extracted from a listing's attribute text.
// Extraction is total: a WeightInfo is always well-formed, defaulting to
// zero weights and a natural stone.
type WeightInfo struct {
	MetalWeightGrams  float64     `json:"metalWeightGrams"`
	StoneWeightCarats float64     `json:"stoneWeightCarats"`
	StoneSource       StoneSource `json:"stoneSource"`
}
