package ledger

import "github.com/mmynk/tallysheet/internal/models"

// Progress is one role's fulfillment of a classification's requirement.
type Progress struct {
	ClassificationID int64 `json:"classification_id"`
	Required         int   `json:"required"`
	Allocated        int   `json:"allocated"`
	Remaining        int   `json:"remaining"`
	Over             int   `json:"over"`
}

// Progress reports fulfillment for every allocation from role's perspective.
func (l *Ledger) Progress(role models.Role) []Progress {
	rows := l.Rows()
	out := make([]Progress, 0, len(rows))
	for _, row := range rows {
		p := Progress{
			ClassificationID: row.WeightClassificationID,
			Required:         row.RequiredBags,
			Allocated:        row.Allocated(role),
		}
		if p.Allocated < p.Required {
			p.Remaining = p.Required - p.Allocated
		} else {
			p.Over = p.Allocated - p.Required
		}
		out = append(out, p)
	}
	return out
}

// Mismatch is a classification where the tally-er and dispatcher counts
// differ by more than the acceptable threshold.
type Mismatch struct {
	ClassificationID int64 `json:"classification_id"`
	Required         int   `json:"required"`
	Tally            int   `json:"tally"`
	Dispatcher       int   `json:"dispatcher"`
	Difference       int   `json:"difference"`
}

// Reconcile lists the classifications whose two role counts differ by more
// than threshold bags.
func (l *Ledger) Reconcile(threshold int) []Mismatch {
	var out []Mismatch
	for _, row := range l.Rows() {
		diff := row.AllocatedBagsTally - row.AllocatedBagsDispatcher
		if diff < 0 {
			diff = -diff
		}
		if diff <= threshold {
			continue
		}
		out = append(out, Mismatch{
			ClassificationID: row.WeightClassificationID,
			Required:         row.RequiredBags,
			Tally:            row.AllocatedBagsTally,
			Dispatcher:       row.AllocatedBagsDispatcher,
			Difference:       diff,
		})
	}
	return out
}
