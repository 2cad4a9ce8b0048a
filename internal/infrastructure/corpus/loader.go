// Package corpus loads the scraped product datasets and holds the active
// corpus snapshot for query serving.
package corpus

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gemgem/backend/internal/attrs"
	"github.com/gemgem/backend/internal/domain"
)

// CSVLoader reads product records from the CSV datasets produced by the
// scraping layer. Rows carry {listing_id, name, price, url, details};
// details is a serialized attribute payload (often a single-quoted
// Python-style dict). Implements domain.CorpusLoader.
type CSVLoader struct {
	targetPath      string
	competitorPaths []string
}

// NewCSVLoader creates a loader for one target dataset and any number of
// competitor datasets
func NewCSVLoader(targetPath string, competitorPaths []string) *CSVLoader {
	return &CSVLoader{
		targetPath:      targetPath,
		competitorPaths: competitorPaths,
	}
}

// LoadTargets reads the target (GemGem) catalog
func (l *CSVLoader) LoadTargets(ctx context.Context) ([]domain.ProductRecord, error) {
	return readRecords(l.targetPath)
}

// LoadCompetitors reads and concatenates all competitor catalogs
func (l *CSVLoader) LoadCompetitors(ctx context.Context) ([]domain.ProductRecord, error) {
	var all []domain.ProductRecord
	for _, path := range l.competitorPaths {
		records, err := readRecords(path)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

func readRecords(path string) ([]domain.ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // scraped rows are occasionally ragged

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := columnIndex(rows[0])
	records := make([]domain.ProductRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec := domain.ProductRecord{
			ListingID:  field(row, cols, "listing_id"),
			Name:       field(row, cols, "name"),
			RawPrice:   field(row, cols, "price"),
			URL:        field(row, cols, "url"),
			Attributes: attrs.Parse(field(row, cols, "details")),
		}
		if rec.ListingID == "" {
			// Competitor datasets carry no listing IDs; synthesize one
			// stable within a load
			rec.ListingID = fmt.Sprintf("%s:%d", datasetName(path), i)
		}
		records = append(records, rec)
	}

	log.Printf("[CORPUS] loaded %d records from %s", len(records), path)
	return records, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func datasetName(path string) string {
	base := path
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".csv")
}
