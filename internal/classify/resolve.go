// Package classify maps scale weights to weight classifications and orders
// classifications for display.
package classify

import "github.com/mmynk/tallysheet/internal/models"

// tier is one priority level of the resolver. Tiers are scanned in order and
// the first classification matching within a tier wins.
type tier func(wc models.WeightClassification, weight float64) bool

var tiers = []tier{
	// Bounded ranges are the most specific.
	func(wc models.WeightClassification, w float64) bool {
		return wc.MinWeight != nil && wc.MaxWeight != nil && *wc.MinWeight <= w && w <= *wc.MaxWeight
	},
	// "X and up"
	func(wc models.WeightClassification, w float64) bool {
		return wc.MinWeight != nil && wc.MaxWeight == nil && w >= *wc.MinWeight
	},
	// "up to X"
	func(wc models.WeightClassification, w float64) bool {
		return wc.MinWeight == nil && wc.MaxWeight != nil && w <= *wc.MaxWeight
	},
	// Catch-all.
	func(wc models.WeightClassification, _ float64) bool {
		return wc.IsCatchAll()
	},
}

// Resolve returns the classification a weight belongs to, or nil if no
// classification matches.
//
// classifications must be in the plant's configured order; ties within a
// priority tier go to the first occurrence. A bounded range always wins over
// an open range or catch-all that would also accept the weight.
func Resolve(weight float64, classifications []models.WeightClassification) *models.WeightClassification {
	for _, match := range tiers {
		for i := range classifications {
			if match(classifications[i], weight) {
				wc := classifications[i]
				return &wc
			}
		}
	}
	return nil
}

// Weighable drops byproduct classifications. Their unbounded rows mean
// "not applicable" and must not act as a catch-all for scale weights.
func Weighable(classifications []models.WeightClassification) []models.WeightClassification {
	out := make([]models.WeightClassification, 0, len(classifications))
	for _, wc := range classifications {
		if !wc.IsByproduct() {
			out = append(out, wc)
		}
	}
	return out
}
