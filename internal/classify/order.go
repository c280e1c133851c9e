package classify

import (
	"slices"
	"strings"

	"github.com/mmynk/tallysheet/internal/models"
)

// defaultOrder is the plant-floor order of the standard classifications.
// Frozen has no default and sorts alphabetically.
var defaultOrder = map[models.Category][]string{
	models.CategoryDressed:   {"OS", "P4", "P3", "P2", "P1", "US", "SQ"},
	models.CategoryByproduct: {"LV", "GZ", "SI", "FT", "PV", "HD", "BLD"},
}

// Order sorts items for display within a category.
//
// With a non-empty customOrderIDs, items are emitted in the order their IDs
// appear there. Otherwise the category's default name list is used, matched
// case-insensitively. Items not placed by either list follow, sorted
// case-insensitively by name.
func Order(items []models.WeightClassification, category models.Category, customOrderIDs []int64) []models.WeightClassification {
	out := make([]models.WeightClassification, 0, len(items))
	placed := make([]bool, len(items))

	if len(customOrderIDs) > 0 {
		for _, id := range customOrderIDs {
			for i, item := range items {
				if !placed[i] && item.ID == id {
					out = append(out, item)
					placed[i] = true
				}
			}
		}
	} else {
		for _, name := range defaultOrder[category] {
			for i, item := range items {
				if !placed[i] && strings.EqualFold(item.Classification, name) {
					out = append(out, item)
					placed[i] = true
				}
			}
		}
	}

	var rest []models.WeightClassification
	for i, item := range items {
		if !placed[i] {
			rest = append(rest, item)
		}
	}
	slices.SortStableFunc(rest, func(a, b models.WeightClassification) int {
		return strings.Compare(strings.ToLower(a.Classification), strings.ToLower(b.Classification))
	})
	return append(out, rest...)
}

// OrderCategory filters all to one category and orders it.
func OrderCategory(all []models.WeightClassification, category models.Category, customOrderIDs []int64) []models.WeightClassification {
	var items []models.WeightClassification
	for _, wc := range all {
		if wc.Category == category {
			items = append(items, wc)
		}
	}
	return Order(items, category, customOrderIDs)
}

// OrderAll orders every category using the user's preferences, emitting
// categories in report order. Classifications with an unrecognized category
// are appended alphabetically.
func OrderAll(all []models.WeightClassification, prefs *models.Preferences) []models.WeightClassification {
	out := make([]models.WeightClassification, 0, len(all))
	for _, category := range models.Categories {
		out = append(out, OrderCategory(all, category, prefs.OrderFor(category))...)
	}
	var other []models.WeightClassification
	for _, wc := range all {
		if !slices.Contains(models.Categories, wc.Category) {
			other = append(other, wc)
		}
	}
	return append(out, Order(other, "", nil)...)
}
