package ledger

import (
	"strings"
	"testing"

	"github.com/mmynk/tallysheet/internal/models"
)

func alloc(required, tally, dispatcher int) *models.AllocationDetail {
	return &models.AllocationDetail{
		WeightClassificationID:  1,
		RequiredBags:            required,
		AllocatedBagsTally:      tally,
		AllocatedBagsDispatcher: dispatcher,
	}
}

func TestCheckCommit(t *testing.T) {
	tests := []struct {
		name       string
		allocation *models.AllocationDetail
		role       models.Role
		delta      int
		want       Verdict
		wantAfter  int
	}{
		{"nil allocation", nil, models.RoleTally, 1, VerdictNoRequirement, 1},
		{"zero requirement", alloc(0, 3, 0), models.RoleTally, 1, VerdictNoRequirement, 4},
		{"room left", alloc(5, 3, 0), models.RoleTally, 1, VerdictOK, 4},
		{"exactly fills requirement", alloc(5, 4, 0), models.RoleTally, 1, VerdictOK, 5},
		{"one over", alloc(5, 5, 0), models.RoleTally, 1, VerdictOverAllocation, 6},
		{"already over", alloc(2, 4, 0), models.RoleTally, 1, VerdictOverAllocation, 5},
		{"roles are independent", alloc(5, 5, 1), models.RoleDispatcher, 1, VerdictOK, 2},
		{"dispatcher over", alloc(2, 0, 2), models.RoleDispatcher, 1, VerdictOverAllocation, 3},
		{"batch delta over", alloc(2, 0, 0), models.RoleTally, 3, VerdictOverAllocation, 3},
		{"batch delta fits", alloc(3, 0, 0), models.RoleTally, 3, VerdictOK, 3},
		{"zero delta treated as one", alloc(1, 1, 0), models.RoleTally, 0, VerdictOverAllocation, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCommit(tt.allocation, tt.role, tt.delta)
			if got.Verdict != tt.want {
				t.Errorf("Verdict = %s, want %s", got.Verdict, tt.want)
			}
			if got.After != tt.wantAfter {
				t.Errorf("After = %d, want %d", got.After, tt.wantAfter)
			}
			if got.RequiresConfirmation() != (tt.want != VerdictOK) {
				t.Errorf("RequiresConfirmation = %v for %s", got.RequiresConfirmation(), got.Verdict)
			}
		})
	}
}

// OK iff required > 0 and current+delta <= required.
func TestCheckCommit_VerdictGrid(t *testing.T) {
	for required := 0; required <= 4; required++ {
		for current := 0; current <= 5; current++ {
			for delta := 1; delta <= 3; delta++ {
				got := CheckCommit(alloc(required, current, 0), models.RoleTally, delta).Verdict

				var want Verdict
				switch {
				case required == 0:
					want = VerdictNoRequirement
				case current+delta > required:
					want = VerdictOverAllocation
				default:
					want = VerdictOK
				}
				if got != want {
					t.Errorf("required=%d current=%d delta=%d: got %s, want %s",
						required, current, delta, got, want)
				}
			}
		}
	}
}

func TestCheckCommit_OverAllocationMessage(t *testing.T) {
	d := CheckCommit(alloc(2, 2, 0), models.RoleTally, 1)
	for _, want := range []string{"required 2", "2 already logged", "3 after"} {
		if !strings.Contains(d.Message, want) {
			t.Errorf("message %q missing %q", d.Message, want)
		}
	}
}

func TestLedger_DerivesRequirementOnlyProgress(t *testing.T) {
	views := []models.AllocationView{
		(&models.AllocationDetail{WeightClassificationID: 1, RequiredBags: 2, AllocatedBagsTally: 9}).RequirementOnly(),
		models.AllocationDetail{WeightClassificationID: 2, RequiredBags: 4, AllocatedBagsTally: 1}.Full(),
	}
	entries := []models.TallyLogEntry{
		{WeightClassificationID: 1, Role: models.RoleTally},
		{WeightClassificationID: 1, Role: models.RoleTally},
		{WeightClassificationID: 1, Role: models.RoleDispatcher},
		{WeightClassificationID: 2, Role: models.RoleTally},
		{WeightClassificationID: 2, Role: models.RoleTally},
	}

	l := New(views, entries)

	first := l.Get(1)
	if first == nil {
		t.Fatal("expected allocation for classification 1")
	}
	if first.AllocatedBagsTally != 2 || first.AllocatedBagsDispatcher != 1 {
		t.Errorf("derived counts = %d/%d, want 2/1", first.AllocatedBagsTally, first.AllocatedBagsDispatcher)
	}
	if got := l.Check(1, models.RoleTally, 1).Verdict; got != VerdictOverAllocation {
		t.Errorf("Check(1) = %s, want %s", got, VerdictOverAllocation)
	}

	// Full rows are authoritative even when entries disagree.
	second := l.Get(2)
	if second.AllocatedBagsTally != 1 {
		t.Errorf("full row tally = %d, want 1", second.AllocatedBagsTally)
	}

	if l.Get(3) != nil {
		t.Error("expected nil for classification without allocation")
	}
	if got := l.Check(3, models.RoleTally, 1).Verdict; got != VerdictNoRequirement {
		t.Errorf("Check(3) = %s, want %s", got, VerdictNoRequirement)
	}
}

func TestLedger_GetReturnsCopy(t *testing.T) {
	l := New([]models.AllocationView{models.AllocationDetail{WeightClassificationID: 1, RequiredBags: 2}.Full()}, nil)

	row := l.Get(1)
	row.AllocatedBagsTally = 50

	if l.Get(1).AllocatedBagsTally != 0 {
		t.Error("Get exposed internal state")
	}
}

func TestLedger_SumsRowsAcrossSessions(t *testing.T) {
	views := []models.AllocationView{
		models.AllocationDetail{SessionID: 1, WeightClassificationID: 1, RequiredBags: 2, AllocatedBagsTally: 1}.Full(),
		models.AllocationDetail{SessionID: 2, WeightClassificationID: 1, RequiredBags: 3, AllocatedBagsTally: 3, AllocatedBagsDispatcher: 2}.Full(),
	}

	l := New(views, nil)
	if rows := l.Rows(); len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	got := l.Get(1)
	if got.RequiredBags != 5 || got.AllocatedBagsTally != 4 || got.AllocatedBagsDispatcher != 2 {
		t.Errorf("summed row = %+v", got)
	}
}

func TestLedger_MixedViewsAcrossSessions(t *testing.T) {
	ro := (&models.AllocationDetail{SessionID: 1, WeightClassificationID: 1, RequiredBags: 2}).RequirementOnly()
	full := models.AllocationDetail{SessionID: 2, WeightClassificationID: 1, RequiredBags: 3, AllocatedBagsTally: 1}.Full()
	entries := []models.TallyLogEntry{
		{SessionID: 1, WeightClassificationID: 1, Role: models.RoleTally},
		{SessionID: 2, WeightClassificationID: 1, Role: models.RoleTally},
	}

	tests := []struct {
		name  string
		views []models.AllocationView
	}{
		{"Requirement-only first", []models.AllocationView{ro, full}},
		{"Full first", []models.AllocationView{full, ro}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.views, entries).Get(1)
			if got.RequiredBags != 5 || got.AllocatedBagsTally != 2 || got.AllocatedBagsDispatcher != 0 {
				t.Errorf("merged row = %+v, want required 5, tally 2", got)
			}
		})
	}
}

func TestLedger_Nil(t *testing.T) {
	var l *Ledger
	if l.Get(1) != nil {
		t.Error("expected nil allocation from nil ledger")
	}
	if got := l.Check(1, models.RoleTally, 1).Verdict; got != VerdictNoRequirement {
		t.Errorf("Check = %s, want %s", got, VerdictNoRequirement)
	}
}
