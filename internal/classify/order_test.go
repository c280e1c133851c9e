package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/tallysheet/internal/models"
)

func named(id int64, name string, category models.Category) models.WeightClassification {
	return models.WeightClassification{ID: id, Classification: name, Category: category}
}

func ids(items []models.WeightClassification) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func names(items []models.WeightClassification) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Classification
	}
	return out
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.WeightClassification
		category models.Category
		custom   []int64
		want     []string
	}{
		{
			name: "custom order first, remainder alphabetical",
			items: []models.WeightClassification{
				named(1, "one", models.CategoryDressed),
				named(2, "two", models.CategoryDressed),
				named(3, "three", models.CategoryDressed),
			},
			category: models.CategoryDressed,
			custom:   []int64{3, 1},
			want:     []string{"three", "one", "two"},
		},
		{
			name: "default dressed order",
			items: []models.WeightClassification{
				named(1, "p1", models.CategoryDressed),
				named(2, "os", models.CategoryDressed),
			},
			category: models.CategoryDressed,
			want:     []string{"os", "p1"},
		},
		{
			name: "unlisted names after default list, case-insensitive alphabetical",
			items: []models.WeightClassification{
				named(1, "zeta", models.CategoryDressed),
				named(2, "P1", models.CategoryDressed),
				named(3, "Alpha", models.CategoryDressed),
				named(4, "OS", models.CategoryDressed),
				named(5, "beta", models.CategoryDressed),
			},
			category: models.CategoryDressed,
			want:     []string{"OS", "P1", "Alpha", "beta", "zeta"},
		},
		{
			name: "default byproduct order",
			items: []models.WeightClassification{
				named(1, "BLD", models.CategoryByproduct),
				named(2, "HD", models.CategoryByproduct),
				named(3, "LV", models.CategoryByproduct),
				named(4, "gz", models.CategoryByproduct),
			},
			category: models.CategoryByproduct,
			want:     []string{"LV", "gz", "HD", "BLD"},
		},
		{
			name: "frozen is fully alphabetical",
			items: []models.WeightClassification{
				named(1, "os", models.CategoryFrozen),
				named(2, "Fz-B", models.CategoryFrozen),
				named(3, "fz-a", models.CategoryFrozen),
			},
			category: models.CategoryFrozen,
			want:     []string{"fz-a", "Fz-B", "os"},
		},
		{
			name: "default match is exact, not prefix",
			items: []models.WeightClassification{
				named(1, "OS2", models.CategoryDressed),
				named(2, "OS", models.CategoryDressed),
			},
			category: models.CategoryDressed,
			want:     []string{"OS", "OS2"},
		},
		{
			name: "custom ids not present are ignored",
			items: []models.WeightClassification{
				named(1, "a", models.CategoryDressed),
				named(2, "b", models.CategoryDressed),
			},
			category: models.CategoryDressed,
			custom:   []int64{99, 2},
			want:     []string{"b", "a"},
		},
		{
			name: "duplicate custom ids emit once",
			items: []models.WeightClassification{
				named(1, "a", models.CategoryDressed),
				named(2, "b", models.CategoryDressed),
			},
			category: models.CategoryDressed,
			custom:   []int64{2, 2, 1},
			want:     []string{"b", "a"},
		},
		{
			name: "custom order replaces the default list",
			items: []models.WeightClassification{
				named(1, "OS", models.CategoryDressed),
				named(2, "P1", models.CategoryDressed),
				named(3, "SQ", models.CategoryDressed),
			},
			category: models.CategoryDressed,
			custom:   []int64{3},
			want:     []string{"SQ", "OS", "P1"},
		},
		{
			name:     "empty input",
			items:    nil,
			category: models.CategoryDressed,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Order(tt.items, tt.category, tt.custom))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Order() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrder_CustomOrderByID(t *testing.T) {
	items := []models.WeightClassification{
		named(1, "c", models.CategoryDressed),
		named(2, "b", models.CategoryDressed),
		named(3, "a", models.CategoryDressed),
	}

	got := ids(Order(items, models.CategoryDressed, []int64{3, 1}))
	if diff := cmp.Diff([]int64{3, 1, 2}, got); diff != "" {
		t.Errorf("Order() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderAll(t *testing.T) {
	all := []models.WeightClassification{
		named(1, "LV", models.CategoryByproduct),
		named(2, "P1", models.CategoryDressed),
		named(3, "Fz", models.CategoryFrozen),
		named(4, "OS", models.CategoryDressed),
		named(5, "HD", models.CategoryByproduct),
	}
	prefs := &models.Preferences{
		ClassificationOrder: models.ClassificationOrder{
			models.CategoryByproduct: {5},
		},
	}

	got := names(OrderAll(all, prefs))
	want := []string{"OS", "P1", "Fz", "HD", "LV"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OrderAll() mismatch (-want +got):\n%s", diff)
	}

	got = names(OrderAll(all, nil))
	want = []string{"OS", "P1", "Fz", "LV", "HD"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OrderAll(nil prefs) mismatch (-want +got):\n%s", diff)
	}
}
