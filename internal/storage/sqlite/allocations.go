package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/tallysheet/internal/models"
)

const allocationColumns = `
	SELECT id, tally_session_id, weight_classification_id, required_bags, allocated_bags_tally, allocated_bags_dispatcher
	FROM allocation_details
`

// ListAllocations returns a session's allocations. The local store has no
// permission model, so every row is a full view.
func (s *SQLiteStore) ListAllocations(ctx context.Context, sessionID int64) ([]models.AllocationView, error) {
	rows, err := s.db.QueryContext(ctx, allocationColumns+" WHERE tally_session_id = ? ORDER BY id", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var out []models.AllocationView
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		out = append(out, a.Full())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}
	return out, nil
}

// SetRequiredBags upserts the requirement for one classification.
func (s *SQLiteStore) SetRequiredBags(ctx context.Context, sessionID, classificationID int64, required int) (*models.AllocationDetail, error) {
	if required < 0 {
		return nil, fmt.Errorf("required bags must not be negative: %d", required)
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if _, err := s.GetClassification(ctx, classificationID); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO allocation_details (tally_session_id, weight_classification_id, required_bags)
		VALUES (?, ?, ?)
		ON CONFLICT (tally_session_id, weight_classification_id) DO UPDATE SET required_bags = excluded.required_bags`,
		sessionID, classificationID, required,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set required bags: %w", err)
	}

	a, err := scanAllocation(s.db.QueryRowContext(ctx,
		allocationColumns+" WHERE tally_session_id = ? AND weight_classification_id = ?",
		sessionID, classificationID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return a, nil
}

func scanAllocation(row scanner) (*models.AllocationDetail, error) {
	var a models.AllocationDetail
	err := row.Scan(&a.ID, &a.SessionID, &a.WeightClassificationID, &a.RequiredBags, &a.AllocatedBagsTally, &a.AllocatedBagsDispatcher)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
