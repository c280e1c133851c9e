package models

// ViewKind tags which shape of allocation data the API returned.
type ViewKind string

const (
	// ViewFull carries requirement and per-role progress.
	ViewFull ViewKind = "full"
	// ViewRequirementOnly carries the requirement only; progress is withheld
	// from callers without permission to view tally logs.
	ViewRequirementOnly ViewKind = "requirement_only"
)

// AllocationDetail is one allocation row: the required bag count for a
// classification within a session and how many bags each role has logged.
//
// Allocated counts may exceed RequiredBags; over-allocation is warned, not rejected.
type AllocationDetail struct {
	ID                      int64 `json:"id"`
	SessionID               int64 `json:"tally_session_id"`
	WeightClassificationID  int64 `json:"weight_classification_id"`
	RequiredBags            int   `json:"required_bags"`
	AllocatedBagsTally      int   `json:"allocated_bags_tally"`
	AllocatedBagsDispatcher int   `json:"allocated_bags_dispatcher"`
}

// Allocated returns the count logged by the given role.
func (a AllocationDetail) Allocated(role Role) int {
	if role == RoleDispatcher {
		return a.AllocatedBagsDispatcher
	}
	return a.AllocatedBagsTally
}

// AllocationView is an allocation row as returned by the API, tagged with
// the shape it was returned in. For ViewRequirementOnly the allocated
// counts are zero and must not be read as progress.
type AllocationView struct {
	View ViewKind `json:"view"`
	AllocationDetail
}

// HasProgress reports whether the allocated counts are meaningful.
func (v AllocationView) HasProgress() bool {
	return v.View == ViewFull
}

// RequirementOnly strips progress from a full row.
func (a AllocationDetail) RequirementOnly() AllocationView {
	return AllocationView{
		View: ViewRequirementOnly,
		AllocationDetail: AllocationDetail{
			ID:                     a.ID,
			SessionID:              a.SessionID,
			WeightClassificationID: a.WeightClassificationID,
			RequiredBags:           a.RequiredBags,
		},
	}
}

// Full wraps a row as a full view.
func (a AllocationDetail) Full() AllocationView {
	return AllocationView{View: ViewFull, AllocationDetail: a}
}
