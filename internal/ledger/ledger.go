// Package ledger decides whether logging more bags against an allocation
// needs operator confirmation.
//
// A Ledger is built from a freshly fetched allocation snapshot and never
// mutates it. The remote store owns the counters; the ledger is recomputed
// for every entry.
package ledger

import (
	"fmt"

	"github.com/mmynk/tallysheet/internal/models"
)

// Verdict is the outcome of a pre-commit allocation check.
type Verdict string

const (
	VerdictOK             Verdict = "OK"
	VerdictNoRequirement  Verdict = "WARN_NO_REQUIREMENT"
	VerdictOverAllocation Verdict = "WARN_OVER_ALLOCATION"
)

// Decision is the result of CheckCommit.
type Decision struct {
	Verdict  Verdict `json:"verdict"`
	Message  string  `json:"message,omitempty"`
	Required int     `json:"required"`
	Current  int     `json:"current"`
	After    int     `json:"after"`
}

// RequiresConfirmation reports whether the caller must get explicit
// confirmation before committing. Neither warning blocks the entry.
func (d Decision) RequiresConfirmation() bool {
	return d.Verdict != VerdictOK
}

// CheckCommit decides whether adding delta units for role to allocation
// needs confirmation. A nil allocation is treated as having no requirement.
// delta values below 1 are treated as 1.
func CheckCommit(allocation *models.AllocationDetail, role models.Role, delta int) Decision {
	if delta < 1 {
		delta = 1
	}
	if allocation == nil || allocation.RequiredBags == 0 {
		d := Decision{Verdict: VerdictNoRequirement, After: delta}
		if allocation != nil {
			d.Current = allocation.Allocated(role)
			d.After = d.Current + delta
		}
		d.Message = "No required bags are set for this classification."
		return d
	}

	current := allocation.Allocated(role)
	d := Decision{
		Required: allocation.RequiredBags,
		Current:  current,
		After:    current + delta,
	}
	if d.After > d.Required {
		d.Verdict = VerdictOverAllocation
		d.Message = fmt.Sprintf("Over-allocation: required %d bags, %d already logged, %d after this entry.",
			d.Required, d.Current, d.After)
		return d
	}
	d.Verdict = VerdictOK
	return d
}

// Ledger indexes an allocation snapshot by classification.
type Ledger struct {
	rows  map[int64]models.AllocationDetail
	order []int64
}

// New builds a ledger from a snapshot. Requirement-only rows carry no
// progress, so their per-role counts are derived from entries: each entry
// is one bag for its role and classification.
//
// Rows sharing a classification are summed, so one ledger can cover several
// sessions of a customer. A requirement-only row counts only the entries of
// its own session.
func New(views []models.AllocationView, entries []models.TallyLogEntry) *Ledger {
	type slot struct {
		sessionID        int64
		classificationID int64
	}
	logged := make(map[slot]map[models.Role]int)
	for _, e := range entries {
		k := slot{e.SessionID, e.WeightClassificationID}
		if logged[k] == nil {
			logged[k] = make(map[models.Role]int)
		}
		logged[k][e.Role]++
	}

	l := &Ledger{rows: make(map[int64]models.AllocationDetail, len(views))}
	for _, v := range views {
		row := v.AllocationDetail
		if !v.HasProgress() {
			counts := logged[slot{row.SessionID, row.WeightClassificationID}]
			row.AllocatedBagsTally = counts[models.RoleTally]
			row.AllocatedBagsDispatcher = counts[models.RoleDispatcher]
		}
		prev, seen := l.rows[row.WeightClassificationID]
		if !seen {
			l.order = append(l.order, row.WeightClassificationID)
		} else {
			row.RequiredBags += prev.RequiredBags
			row.AllocatedBagsTally += prev.AllocatedBagsTally
			row.AllocatedBagsDispatcher += prev.AllocatedBagsDispatcher
		}
		l.rows[row.WeightClassificationID] = row
	}
	return l
}

// Get returns the allocation for a classification, or nil if the session
// has none.
func (l *Ledger) Get(classificationID int64) *models.AllocationDetail {
	if l == nil {
		return nil
	}
	row, ok := l.rows[classificationID]
	if !ok {
		return nil
	}
	return &row
}

// Check runs CheckCommit against the classification's allocation.
func (l *Ledger) Check(classificationID int64, role models.Role, delta int) Decision {
	return CheckCommit(l.Get(classificationID), role, delta)
}

// Rows returns the allocations in snapshot order.
func (l *Ledger) Rows() []models.AllocationDetail {
	out := make([]models.AllocationDetail, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.rows[id])
	}
	return out
}
