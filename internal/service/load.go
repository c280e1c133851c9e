package service

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tallysheet/internal/ledger"
	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/storage"
	"github.com/mmynk/tallysheet/internal/tallysheet"
)

// maxParallelFetches bounds concurrent store calls for multi-session exports.
const maxParallelFetches = 4

// sessionData is a fresh snapshot of everything the engine needs about one
// session.
type sessionData struct {
	session         *models.TallySession
	classifications []models.WeightClassification
	allocations     []models.AllocationView
	entries         []models.TallyLogEntry // both roles, newest first
}

func (d *sessionData) ledger() *ledger.Ledger {
	return ledger.New(d.allocations, d.entries)
}

// needsEntries reports whether any allocation lacks progress, in which
// case the ledger has to count entries itself.
func needsEntries(views []models.AllocationView) bool {
	return slices.ContainsFunc(views, func(v models.AllocationView) bool { return !v.HasProgress() })
}

// loadSession fetches a session's snapshot. Entries are fetched only when
// withEntries is set or the allocations need them.
func loadSession(ctx context.Context, store storage.TallyStore, sessionID int64, withEntries bool) (*sessionData, error) {
	session, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d := &sessionData{session: session}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.classifications, err = store.ListClassifications(gctx, session.PlantID)
		return err
	})
	g.Go(func() error {
		var err error
		d.allocations, err = store.ListAllocations(gctx, sessionID)
		return err
	})
	if withEntries {
		g.Go(func() error {
			var err error
			d.entries, err = store.ListLogEntries(gctx, sessionID, nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !withEntries && needsEntries(d.allocations) {
		if d.entries, err = store.ListLogEntries(ctx, sessionID, nil); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// loadSessions fetches several sessions in parallel, keeping input order.
func loadSessions(ctx context.Context, store storage.TallyStore, sessionIDs []int64) ([]*sessionData, error) {
	out := make([]*sessionData, len(sessionIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, id := range sessionIDs {
		g.Go(func() error {
			d, err := loadSession(gctx, store, id, true)
			if err != nil {
				return fmt.Errorf("session %d: %w", id, err)
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// byCustomer merges sessions of the same customer into one export input.
func byCustomer(sessions []*sessionData) []tallysheet.CustomerInput {
	index := make(map[string]int)
	var out []tallysheet.CustomerInput
	for _, d := range sessions {
		name := d.session.CustomerName
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, tallysheet.CustomerInput{CustomerName: name})
		}
		c := &out[i]
		for _, wc := range d.classifications {
			if !slices.ContainsFunc(c.Classifications, func(have models.WeightClassification) bool { return have.ID == wc.ID }) {
				c.Classifications = append(c.Classifications, wc)
			}
		}
		c.Allocations = append(c.Allocations, d.allocations...)
		c.Entries = append(c.Entries, d.entries...)
	}
	return out
}
