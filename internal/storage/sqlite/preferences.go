package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/tallysheet/internal/models"
)

// GetPreferences returns the user's stored preferences, or empty ones.
func (s *SQLiteStore) GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT classification_order FROM user_preferences WHERE user_id = ?",
		userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Preferences{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs := &models.Preferences{UserID: userID}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &prefs.ClassificationOrder); err != nil {
			return nil, fmt.Errorf("failed to decode classification order: %w", err)
		}
	}
	return prefs, nil
}

// UpdateClassificationOrder replaces the user's order for one category.
// An empty ids list removes the category's custom order.
func (s *SQLiteStore) UpdateClassificationOrder(ctx context.Context, userID int64, category models.Category, ids []int64) (*models.Preferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs.ClassificationOrder == nil {
		prefs.ClassificationOrder = make(models.ClassificationOrder)
	}
	if len(ids) == 0 {
		delete(prefs.ClassificationOrder, category)
	} else {
		prefs.ClassificationOrder[category] = ids
	}

	if err := s.savePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// ResetClassificationOrder clears every custom order for the user.
func (s *SQLiteStore) ResetClassificationOrder(ctx context.Context, userID int64) (*models.Preferences, error) {
	prefs := &models.Preferences{UserID: userID}
	if err := s.savePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *SQLiteStore) savePreferences(ctx context.Context, prefs *models.Preferences) error {
	var order sql.NullString
	if len(prefs.ClassificationOrder) > 0 {
		data, err := json.Marshal(prefs.ClassificationOrder)
		if err != nil {
			return fmt.Errorf("failed to encode classification order: %w", err)
		}
		order = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, classification_order) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET classification_order = excluded.classification_order`,
		prefs.UserID, order,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
