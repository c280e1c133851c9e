package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/tallysheet/internal/models"
)

// CreateLogEntry inserts entry and bumps its role's allocation counter in
// one transaction.
func (s *SQLiteStore) CreateLogEntry(ctx context.Context, sessionID int64, entry *models.TallyLogEntry) error {
	var counter string
	switch entry.Role {
	case models.RoleTally:
		counter = "allocated_bags_tally"
	case models.RoleDispatcher:
		counter = "allocated_bags_dispatcher"
	default:
		return fmt.Errorf("invalid role: %q", entry.Role)
	}

	// Both lookups fail with storage.ErrNotFound.
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if _, err := s.GetClassification(ctx, entry.WeightClassificationID); err != nil {
		return err
	}

	entry.SessionID = sessionID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO allocation_details (tally_session_id, weight_classification_id, required_bags)
		VALUES (?, ?, 0)
		ON CONFLICT (tally_session_id, weight_classification_id) DO NOTHING`,
		sessionID, entry.WeightClassificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure allocation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE allocation_details SET "+counter+" = "+counter+" + 1 WHERE tally_session_id = ? AND weight_classification_id = ?",
		sessionID, entry.WeightClassificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment allocation: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tally_log_entries (tally_session_id, weight_classification_id, role, weight, heads, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, entry.WeightClassificationID, entry.Role, entry.Weight, entry.Heads, entry.Notes, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListLogEntries returns a session's entries, newest first.
func (s *SQLiteStore) ListLogEntries(ctx context.Context, sessionID int64, role *models.Role) ([]models.TallyLogEntry, error) {
	query := `
		SELECT id, tally_session_id, weight_classification_id, role, weight, heads, notes, created_at
		FROM tally_log_entries
		WHERE tally_session_id = ?`
	args := []any{sessionID}
	if role != nil {
		query += " AND role = ?"
		args = append(args, *role)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	defer rows.Close()

	var out []models.TallyLogEntry
	for rows.Next() {
		var (
			e       models.TallyLogEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.WeightClassificationID, &e.Role, &e.Weight, &e.Heads, &e.Notes, &created); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log entries: %w", err)
	}
	return out, nil
}
