// Package recorder turns an operator's weight/heads/quantity input into the
// log entries to persist, gating commits on allocation confirmation.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/mmynk/tallysheet/internal/classify"
	"github.com/mmynk/tallysheet/internal/config"
	"github.com/mmynk/tallysheet/internal/ledger"
	"github.com/mmynk/tallysheet/internal/models"
)

// Mode is how the operator entered the bag.
type Mode string

const (
	// ModeAutomatic resolves the classification from the scale weight.
	ModeAutomatic Mode = "automatic"
	// ModeManual uses an explicitly picked classification.
	ModeManual Mode = "manual"
	// ModeByproductIncrement logs a single byproduct unit with one tap.
	ModeByproductIncrement Mode = "byproduct_increment"
	// ModeByproductBulk logs Quantity byproduct units, one entry each.
	ModeByproductBulk Mode = "byproduct_bulk"
)

// Input is one submission from the entry screen.
type Input struct {
	Mode             Mode
	Role             models.Role
	Weight           float64
	ClassificationID int64    // 0 when nothing was picked
	Heads            *float64 // nil when the field was not collected
	Quantity         int
	Notes            string
}

// EntrySpec is a log entry ready to be created.
type EntrySpec struct {
	ClassificationID int64       `json:"weight_classification_id"`
	Role             models.Role `json:"role"`
	Weight           float64     `json:"weight"`
	Heads            int         `json:"heads"`
	Notes            string      `json:"notes,omitempty"`
}

// Submission is the outcome of Submit: the entries to create and whether
// the operator has to confirm first.
type Submission struct {
	Classification       models.WeightClassification
	Entries              []EntrySpec
	Decision             ledger.Decision
	RequiresConfirmation bool
	ConfirmationPrompt   string
}

// EntryCreator persists one log entry. Implementations own the allocation
// counters and increment the entry's role count as part of the create.
type EntryCreator interface {
	CreateLogEntry(ctx context.Context, sessionID int64, entry *models.TallyLogEntry) error
}

// Recorder validates entry input and commits entries in order.
type Recorder struct {
	cfg  config.TallyConfig
	gate *Gate
}

// New creates a Recorder with the given tally settings.
func New(cfg config.TallyConfig) *Recorder {
	return &Recorder{cfg: cfg, gate: NewGate()}
}

// Submit validates in against the plant's classifications and the current
// allocation snapshot. It performs no I/O. An error means the input was
// rejected; a Submission with RequiresConfirmation must be confirmed before
// Commit.
func (r *Recorder) Submit(in Input, classifications []models.WeightClassification, l *ledger.Ledger) (*Submission, error) {
	if _, err := models.ParseRole(string(in.Role)); err != nil {
		return nil, ErrInvalidRole
	}

	var (
		wc      models.WeightClassification
		entries []EntrySpec
	)
	switch in.Mode {
	case ModeAutomatic:
		if err := validateWeight(in.Weight); err != nil {
			return nil, err
		}
		match := classify.Resolve(in.Weight, classify.Weighable(classifications))
		if match == nil {
			return nil, fmt.Errorf("%w: %.2f", ErrNoClassificationMatch, in.Weight)
		}
		wc = *match
		entries = []EntrySpec{{Weight: in.Weight, Heads: r.cfg.DefaultHeadsAmount}}

	case ModeManual:
		picked, err := lookup(in.ClassificationID, classifications)
		if err != nil {
			return nil, err
		}
		if err := validateWeight(in.Weight); err != nil {
			return nil, err
		}
		wc = picked
		heads := 1
		if !wc.IsByproduct() {
			if heads, err = r.heads(in.Heads); err != nil {
				return nil, err
			}
		}
		entries = []EntrySpec{{Weight: in.Weight, Heads: heads}}

	case ModeByproductIncrement, ModeByproductBulk:
		picked, err := lookup(in.ClassificationID, classifications)
		if err != nil {
			return nil, err
		}
		if !picked.IsByproduct() {
			return nil, ErrNotByproduct
		}
		wc = picked
		quantity := 1
		if in.Mode == ModeByproductBulk {
			if in.Quantity < 1 {
				return nil, ErrInvalidQuantity
			}
			quantity = in.Quantity
		}
		entries = make([]EntrySpec, quantity)
		for i := range entries {
			entries[i] = EntrySpec{Weight: 1, Heads: 1}
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, in.Mode)
	}

	for i := range entries {
		entries[i].ClassificationID = wc.ID
		entries[i].Role = in.Role
		entries[i].Notes = in.Notes
	}

	// A batch is checked as a whole against the snapshot taken before it starts.
	decision := l.Check(wc.ID, in.Role, len(entries))
	sub := &Submission{
		Classification:       wc,
		Entries:              entries,
		Decision:             decision,
		RequiresConfirmation: decision.RequiresConfirmation(),
	}
	if sub.RequiresConfirmation {
		sub.ConfirmationPrompt = prompt(wc, decision, len(entries))
	}
	return sub, nil
}

// Commit creates the submission's entries one at a time, in order, waiting
// for each create before issuing the next. It refuses to start when the
// submission needs confirmation and confirmed is false, and when another
// commit for the same session and user is in flight.
//
// The batch is not atomic: on failure the entries already created are
// returned together with a *BatchError.
func (r *Recorder) Commit(ctx context.Context, creator EntryCreator, sessionID, userID int64, sub *Submission, confirmed bool) ([]models.TallyLogEntry, error) {
	if sub.RequiresConfirmation && !confirmed {
		return nil, ErrConfirmationRequired
	}

	release, err := r.gate.Acquire(sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	created := make([]models.TallyLogEntry, 0, len(sub.Entries))
	for i, spec := range sub.Entries {
		if err := ctx.Err(); err != nil {
			return created, &BatchError{Created: i, Total: len(sub.Entries), Err: err}
		}
		entry := models.TallyLogEntry{
			SessionID:              sessionID,
			WeightClassificationID: spec.ClassificationID,
			Role:                   spec.Role,
			Weight:                 spec.Weight,
			Heads:                  spec.Heads,
			Notes:                  spec.Notes,
		}
		if err := creator.CreateLogEntry(ctx, sessionID, &entry); err != nil {
			slog.Warn("Entry batch stopped",
				"session_id", sessionID,
				"created", i,
				"total", len(sub.Entries),
				"error", err,
			)
			return created, &BatchError{Created: i, Total: len(sub.Entries), Err: err}
		}
		created = append(created, entry)
	}
	return created, nil
}

func (r *Recorder) heads(v *float64) (int, error) {
	if v == nil {
		return r.cfg.DefaultHeadsAmount, nil
	}
	h := *v
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 || h != math.Trunc(h) || h > math.MaxInt32 {
		return 0, ErrInvalidHeads
	}
	return int(h), nil
}

func validateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return ErrInvalidWeight
	}
	return nil
}

func lookup(id int64, classifications []models.WeightClassification) (models.WeightClassification, error) {
	if id == 0 {
		return models.WeightClassification{}, ErrMissingClassification
	}
	for _, wc := range classifications {
		if wc.ID == id {
			return wc, nil
		}
	}
	return models.WeightClassification{}, fmt.Errorf("%w: id %d", ErrUnknownClassification, id)
}

func prompt(wc models.WeightClassification, d ledger.Decision, n int) string {
	bags := "1 bag"
	if n != 1 {
		bags = fmt.Sprintf("%d bags", n)
	}
	switch d.Verdict {
	case ledger.VerdictNoRequirement:
		return fmt.Sprintf("%s has no required bags for this session. Log %s anyway?", wc.Classification, bags)
	case ledger.VerdictOverAllocation:
		return fmt.Sprintf("%s requires %d bags and %d are already logged. Logging %s brings it to %d. Continue?",
			wc.Classification, d.Required, d.Current, bags, d.After)
	default:
		return ""
	}
}
