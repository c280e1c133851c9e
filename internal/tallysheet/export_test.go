package tallysheet

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/tallysheet/internal/config"
	"github.com/mmynk/tallysheet/internal/models"
)

func TestBuildExport_SortsCustomers(t *testing.T) {
	classes := []models.WeightClassification{dressed(1, "P1"), byproduct(2, "LV")}
	customers := []CustomerInput{
		{CustomerName: "zamora farms", Classifications: classes, Entries: []models.TallyLogEntry{entry(1, 1, 12, 15)}},
		{CustomerName: "Acme", Classifications: classes, Entries: []models.TallyLogEntry{entry(2, 1, 13, 15), entry(3, 2, 1, 1)}},
		{CustomerName: "Bravo", Classifications: classes, Entries: []models.TallyLogEntry{entry(4, 1, 12.5, 14)}},
	}

	export := New(config.DefaultTallyConfig()).BuildExport(customers, models.RoleTally, nil)

	var got []string
	for _, s := range export.Sheets {
		got = append(got, s.CustomerName)
	}
	if diff := cmp.Diff([]string{"Acme", "Bravo", "zamora farms"}, got); diff != "" {
		t.Errorf("customer order mismatch (-want +got):\n%s", diff)
	}

	if len(export.GrandTotals) != 2 {
		t.Fatalf("Expected 2 grand total rows, got %d", len(export.GrandTotals))
	}
	p1 := export.GrandTotals[0]
	if p1.Classification != "P1" || p1.Bags != 3 || p1.Heads != 44 || p1.Kilograms.String() != "37.5" {
		t.Errorf("P1 grand total = %+v", p1)
	}
	if lv := export.GrandTotals[1]; lv.Classification != "LV" || lv.Bags != 1 {
		t.Errorf("LV grand total = %+v", lv)
	}
	if export.GrandTotal.Bags != 4 {
		t.Errorf("GrandTotal bags = %d, want 4", export.GrandTotal.Bags)
	}
}

func TestBuildExport_SingleCustomerHasNoGrandTable(t *testing.T) {
	classes := []models.WeightClassification{dressed(1, "P1")}
	export := New(config.DefaultTallyConfig()).BuildExport([]CustomerInput{
		{CustomerName: "Acme", Classifications: classes, Entries: []models.TallyLogEntry{entry(1, 1, 12, 15)}},
	}, models.RoleTally, nil)

	if len(export.Sheets) != 1 {
		t.Fatalf("Expected 1 sheet, got %d", len(export.Sheets))
	}
	if export.GrandTotals != nil {
		t.Errorf("Expected no grand total table, got %+v", export.GrandTotals)
	}
}

func TestBuildExport_Mismatches(t *testing.T) {
	classes := []models.WeightClassification{dressed(1, "P1"), dressed(2, "P2")}
	allocations := []models.AllocationView{
		models.AllocationDetail{WeightClassificationID: 1, RequiredBags: 10, AllocatedBagsTally: 5, AllocatedBagsDispatcher: 3}.Full(),
		models.AllocationDetail{WeightClassificationID: 2, RequiredBags: 10, AllocatedBagsTally: 4, AllocatedBagsDispatcher: 4}.Full(),
	}
	customers := []CustomerInput{{CustomerName: "Acme", Classifications: classes, Allocations: allocations}}

	strict := New(config.TallyConfig{DefaultHeadsAmount: 15}).BuildExport(customers, models.RoleTally, nil)
	if got := strict.Sheets[0].Mismatches; len(got) != 1 || got[0].ClassificationID != 1 || got[0].Difference != 2 {
		t.Errorf("Mismatches = %+v", got)
	}

	lenient := New(config.TallyConfig{DefaultHeadsAmount: 15, AcceptableDifferenceThreshold: 2}).BuildExport(customers, models.RoleTally, nil)
	if got := lenient.Sheets[0].Mismatches; len(got) != 0 {
		t.Errorf("Expected no mismatches within threshold, got %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	classes := []models.WeightClassification{
		dressed(1, "P1"),
		dressed(2, "OS"),
		byproduct(3, "LV"),
		{ID: 4, Classification: "FZ", Category: models.CategoryFrozen},
	}
	full := func(classID int64, tally int) models.AllocationView {
		return models.AllocationDetail{WeightClassificationID: classID, RequiredBags: 5, AllocatedBagsTally: tally}.Full()
	}
	customers := []CustomerInput{
		{CustomerName: "Bravo", Classifications: classes, Allocations: []models.AllocationView{full(1, 2), full(3, 4), full(2, 0)}},
		{CustomerName: "Acme", Classifications: classes, Allocations: []models.AllocationView{full(4, 1), full(1, 3)}},
		{CustomerName: "Bravo", Classifications: classes, Allocations: []models.AllocationView{full(1, 1)}},
	}

	got := Summarize(customers, models.RoleTally)
	want := &Summary{
		Customers: []CustomerSummary{
			{CustomerName: "Acme", Items: []SummaryItem{
				{Category: "DC", Classification: "P1", Bags: 3},
				{Category: "FR", Classification: "FZ", Bags: 1},
			}, Subtotal: 4},
			{CustomerName: "Bravo", Items: []SummaryItem{
				{Category: "DC", Classification: "P1", Bags: 3},
				{Category: "BP", Classification: "LV", Bags: 4},
			}, Subtotal: 7},
		},
		GrandTotals: map[string]int{"DC": 6, "FR": 1, "BP": 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_RequirementOnlyUsesEntries(t *testing.T) {
	classes := []models.WeightClassification{dressed(1, "P1")}
	customers := []CustomerInput{{
		CustomerName:    "Acme",
		Classifications: classes,
		Allocations:     []models.AllocationView{models.AllocationDetail{WeightClassificationID: 1, RequiredBags: 5}.RequirementOnly()},
		Entries:         []models.TallyLogEntry{entry(1, 1, 12, 15), entry(2, 1, 13, 15)},
	}}

	got := Summarize(customers, models.RoleTally)
	if got.Customers[0].Subtotal != 2 {
		t.Errorf("Subtotal = %d, want 2", got.Customers[0].Subtotal)
	}
}

func TestSummarize_SortsCustomersLikeBuildExport(t *testing.T) {
	classes := []models.WeightClassification{dressed(1, "P1")}
	allocs := []models.AllocationView{models.AllocationDetail{WeightClassificationID: 1, AllocatedBagsTally: 1}.Full()}
	customers := []CustomerInput{
		{CustomerName: "Bob", Classifications: classes, Allocations: allocs},
		{CustomerName: "alice", Classifications: classes, Allocations: allocs},
	}

	summary := Summarize(customers, models.RoleTally)
	export := New(config.DefaultTallyConfig()).BuildExport(customers, models.RoleTally, nil)

	var summaryNames, exportNames []string
	for _, c := range summary.Customers {
		summaryNames = append(summaryNames, c.CustomerName)
	}
	for _, s := range export.Sheets {
		exportNames = append(exportNames, s.CustomerName)
	}
	if diff := cmp.Diff([]string{"alice", "Bob"}, summaryNames); diff != "" {
		t.Errorf("Summarize order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(summaryNames, exportNames); diff != "" {
		t.Errorf("BuildExport order differs from Summarize (-summary +export):\n%s", diff)
	}
}

func TestSummarize_MixedViewsAcrossSessions(t *testing.T) {
	classes := []models.WeightClassification{dressed(1, "P1")}
	ro := models.AllocationDetail{SessionID: 1, WeightClassificationID: 1, RequiredBags: 2}.RequirementOnly()
	full := models.AllocationDetail{SessionID: 2, WeightClassificationID: 1, RequiredBags: 2, AllocatedBagsTally: 1}.Full()
	first := entry(1, 1, 12, 15)
	first.SessionID = 1
	second := entry(2, 1, 13, 15)
	second.SessionID = 2

	for _, views := range [][]models.AllocationView{{ro, full}, {full, ro}} {
		got := Summarize([]CustomerInput{{
			CustomerName:    "Acme",
			Classifications: classes,
			Allocations:     views,
			Entries:         []models.TallyLogEntry{first, second},
		}}, models.RoleTally)
		if got.Customers[0].Subtotal != 2 {
			t.Errorf("views %v: Subtotal = %d, want 2", views[0].View, got.Customers[0].Subtotal)
		}
	}
}
