package classify

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mmynk/tallysheet/internal/models"
)

var (
	ErrInvalidRange       = errors.New("invalid weight range")
	ErrRangeOverlap       = errors.New("weight range overlaps an existing classification")
	ErrDuplicateByproduct = errors.New("byproduct already exists")
)

// Validate checks a new or updated classification against the rest of its
// plant's classifications. Byproducts must be unique by name and
// description. Other categories must not overlap another range in the same
// category; a catch-all overlaps everything.
func Validate(wc models.WeightClassification, existing []models.WeightClassification) error {
	if strings.TrimSpace(wc.Classification) == "" {
		return fmt.Errorf("%w: classification name is required", ErrInvalidRange)
	}
	if wc.MinWeight != nil && wc.MaxWeight != nil && *wc.MinWeight > *wc.MaxWeight {
		return fmt.Errorf("%w: min %.2f is above max %.2f", ErrInvalidRange, *wc.MinWeight, *wc.MaxWeight)
	}

	for _, other := range existing {
		if other.ID == wc.ID && wc.ID != 0 {
			continue
		}
		if other.PlantID != wc.PlantID || other.Category != wc.Category {
			continue
		}
		if wc.IsByproduct() {
			if strings.EqualFold(other.Classification, wc.Classification) {
				return fmt.Errorf("%w: %q", ErrDuplicateByproduct, other.Classification)
			}
			if wc.Description != "" && strings.EqualFold(strings.TrimSpace(other.Description), strings.TrimSpace(wc.Description)) {
				return fmt.Errorf("%w: description %q", ErrDuplicateByproduct, other.Description)
			}
			continue
		}
		if overlaps(wc, other) {
			return fmt.Errorf("%w: %s (%s)", ErrRangeOverlap, other.Classification, other.RangeLabel())
		}
	}
	return nil
}

func overlaps(a, b models.WeightClassification) bool {
	if a.IsCatchAll() || b.IsCatchAll() {
		return true
	}
	aMin, aMax := bounds(a)
	bMin, bMax := bounds(b)
	return aMin <= bMax && bMin <= aMax
}

func bounds(wc models.WeightClassification) (float64, float64) {
	lo, hi := math.Inf(-1), math.Inf(1)
	if wc.MinWeight != nil {
		lo = *wc.MinWeight
	}
	if wc.MaxWeight != nil {
		hi = *wc.MaxWeight
	}
	return lo, hi
}
