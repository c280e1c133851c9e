package classify

import (
	"errors"
	"testing"

	"github.com/mmynk/tallysheet/internal/models"
)

func TestValidate(t *testing.T) {
	existing := []models.WeightClassification{
		{ID: 1, Classification: "P1", Category: models.CategoryDressed, MinWeight: models.Weight(12), MaxWeight: models.Weight(13.49)},
		{ID: 2, Classification: "OS", Category: models.CategoryDressed, MinWeight: models.Weight(18)},
		{ID: 3, Classification: "LV", Category: models.CategoryByproduct, Description: "Liver"},
	}

	tests := []struct {
		name    string
		wc      models.WeightClassification
		wantErr error
	}{
		{
			name: "adjacent range",
			wc:   models.WeightClassification{Classification: "P2", Category: models.CategoryDressed, MinWeight: models.Weight(13.5), MaxWeight: models.Weight(14.99)},
		},
		{
			name:    "overlapping range",
			wc:      models.WeightClassification{Classification: "X", Category: models.CategoryDressed, MinWeight: models.Weight(13), MaxWeight: models.Weight(14)},
			wantErr: ErrRangeOverlap,
		},
		{
			name:    "open upper overlaps",
			wc:      models.WeightClassification{Classification: "X", Category: models.CategoryDressed, MinWeight: models.Weight(20)},
			wantErr: ErrRangeOverlap,
		},
		{
			name:    "catch-all overlaps everything",
			wc:      models.WeightClassification{Classification: "ALL", Category: models.CategoryDressed},
			wantErr: ErrRangeOverlap,
		},
		{
			name: "other category ignored",
			wc:   models.WeightClassification{Classification: "F1", Category: models.CategoryFrozen, MinWeight: models.Weight(12), MaxWeight: models.Weight(13)},
		},
		{
			name: "updating itself",
			wc:   models.WeightClassification{ID: 1, Classification: "P1", Category: models.CategoryDressed, MinWeight: models.Weight(12), MaxWeight: models.Weight(13.4)},
		},
		{
			name:    "min above max",
			wc:      models.WeightClassification{Classification: "X", Category: models.CategoryFrozen, MinWeight: models.Weight(5), MaxWeight: models.Weight(4)},
			wantErr: ErrInvalidRange,
		},
		{
			name:    "duplicate byproduct name",
			wc:      models.WeightClassification{Classification: "lv", Category: models.CategoryByproduct},
			wantErr: ErrDuplicateByproduct,
		},
		{
			name:    "duplicate byproduct description",
			wc:      models.WeightClassification{Classification: "LV2", Category: models.CategoryByproduct, Description: " liver "},
			wantErr: ErrDuplicateByproduct,
		},
		{
			name: "new byproduct",
			wc:   models.WeightClassification{Classification: "GZ", Category: models.CategoryByproduct, Description: "Gizzard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.wc, existing)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
