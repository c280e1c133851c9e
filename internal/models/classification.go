package models

import (
	"fmt"
	"strings"
)

// Category is the top-level product grouping of a classification.
type Category string

const (
	CategoryDressed   Category = "Dressed"
	CategoryFrozen    Category = "Frozen"
	CategoryByproduct Category = "Byproduct"
)

// Categories lists the known categories in report order.
var Categories = []Category{CategoryDressed, CategoryFrozen, CategoryByproduct}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// Code returns the short code used in export summaries (DC, FR, BP).
func (c Category) Code() string {
	switch c {
	case CategoryDressed:
		return "DC"
	case CategoryFrozen:
		return "FR"
	case CategoryByproduct:
		return "BP"
	default:
		return string(c)
	}
}

// WeightClassification is a named weight bucket configured per plant.
//
// A classification with both bounds nil is a catch-all, or "not applicable"
// when the category is Byproduct.
type WeightClassification struct {
	ID             int64    `json:"id"`
	PlantID        int64    `json:"plant_id"`
	Classification string   `json:"classification"`
	Category       Category `json:"category"`
	MinWeight      *float64 `json:"min_weight"`
	MaxWeight      *float64 `json:"max_weight"`
	Description    string   `json:"description,omitempty"`
}

// IsCatchAll reports whether neither bound is set.
func (wc WeightClassification) IsCatchAll() bool {
	return wc.MinWeight == nil && wc.MaxWeight == nil
}

// IsByproduct reports whether the classification belongs to the Byproduct category.
func (wc WeightClassification) IsByproduct() bool {
	return wc.Category == CategoryByproduct
}

// RangeLabel renders the weight range the way operators read it.
func (wc WeightClassification) RangeLabel() string {
	switch {
	case wc.IsCatchAll() && wc.IsByproduct():
		return "n/a"
	case wc.IsCatchAll():
		return "catch-all"
	case wc.MaxWeight == nil:
		return fmt.Sprintf("%.2f and up", *wc.MinWeight)
	case wc.MinWeight == nil:
		return fmt.Sprintf("up to %.2f", *wc.MaxWeight)
	default:
		return fmt.Sprintf("%.2f-%.2f", *wc.MinWeight, *wc.MaxWeight)
	}
}

// Weight returns a pointer to w, for building classification bounds.
func Weight(w float64) *float64 {
	return &w
}
