package usecase

import (
	"log"
	"strings"

	"github.com/gemgem/backend/internal/attrs"
	"github.com/gemgem/backend/internal/domain"
)

// ExtractWeights recovers metal weight, stone carat weight and stone source
// from a listing's attribute payload. Vendor schemas differ in section names
// and nesting, so every lookup defaults safely: the function is total and
// never fails past this boundary. Fields that cannot be parsed are left at
// zero and logged for diagnosis.
func ExtractWeights(attributes attrs.Value) domain.WeightInfo {
	info := domain.WeightInfo{StoneSource: domain.StoneSourceNatural}

	if specs, ok := attributes.SectionContaining("specification"); ok {
		if weightField, ok := fieldContaining(specs, "weight"); ok {
			if grams, ok := attrs.LeadingNumber(weightField.Text()); ok {
				info.MetalWeightGrams = grams
			} else {
				log.Printf("[WEIGHTS] unparseable metal weight: %q", weightField.Text())
			}
		}
	}

	if stones, ok := attributes.SectionContaining("stone"); ok {
		if caratField, ok := fieldContaining(stones, "carat"); ok {
			if carats, ok := attrs.LeadingNumber(caratField.Text()); ok {
				info.StoneWeightCarats = carats
			} else {
				log.Printf("[WEIGHTS] unparseable carat weight: %q", caratField.Text())
			}
		}
	}

	if source, ok := attributes.FieldFold("source"); ok {
		if strings.Contains(strings.ToLower(source.Text()), "lab") {
			info.StoneSource = domain.StoneSourceLab
		}
	}

	return info
}

// fieldContaining finds the first field of an object section whose key
// contains the fragment, case-insensitive
func fieldContaining(section attrs.Value, fragment string) (attrs.Value, bool) {
	fragment = strings.ToLower(fragment)
	for _, k := range section.Keys() {
		if strings.Contains(strings.ToLower(k), fragment) {
			field, _ := section.Field(k)
			return field, true
		}
	}
	return attrs.Value{}, false
}
