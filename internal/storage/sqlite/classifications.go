package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tallysheet/internal/classify"
	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/storage"
)

const classificationColumns = `
	SELECT id, plant_id, classification, category, min_weight, max_weight, description
	FROM weight_classifications
`

// CreateClassification validates wc against the plant's existing
// classifications and inserts it.
func (s *SQLiteStore) CreateClassification(ctx context.Context, wc *models.WeightClassification) error {
	existing, err := s.ListClassifications(ctx, wc.PlantID)
	if err != nil {
		return err
	}
	if err := classify.Validate(*wc, existing); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO weight_classifications (plant_id, classification, category, min_weight, max_weight, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		wc.PlantID, wc.Classification, wc.Category, nullFloat(wc.MinWeight), nullFloat(wc.MaxWeight), wc.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create classification: %w", err)
	}
	wc.ID, err = res.LastInsertId()
	return err
}

// ListClassifications returns a plant's classifications in insertion order.
func (s *SQLiteStore) ListClassifications(ctx context.Context, plantID int64) ([]models.WeightClassification, error) {
	rows, err := s.db.QueryContext(ctx, classificationColumns+" WHERE plant_id = ? ORDER BY id", plantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	defer rows.Close()

	var out []models.WeightClassification
	for rows.Next() {
		wc, err := scanClassification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		out = append(out, *wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate classifications: %w", err)
	}
	return out, nil
}

// GetClassification returns one classification by ID.
func (s *SQLiteStore) GetClassification(ctx context.Context, id int64) (*models.WeightClassification, error) {
	wc, err := scanClassification(s.db.QueryRowContext(ctx, classificationColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("classification %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}
	return wc, nil
}

func scanClassification(row scanner) (*models.WeightClassification, error) {
	var (
		wc     models.WeightClassification
		lo, hi sql.NullFloat64
	)
	if err := row.Scan(&wc.ID, &wc.PlantID, &wc.Classification, &wc.Category, &lo, &hi, &wc.Description); err != nil {
		return nil, err
	}
	if lo.Valid {
		wc.MinWeight = models.Weight(lo.Float64)
	}
	if hi.Valid {
		wc.MaxWeight = models.Weight(hi.Float64)
	}
	return &wc, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// StandardClassifications is the classification set most plants start with.
var StandardClassifications = []models.WeightClassification{
	{Classification: "OS", Category: models.CategoryDressed, MinWeight: models.Weight(18)},
	{Classification: "P4", Category: models.CategoryDressed, MinWeight: models.Weight(16.5), MaxWeight: models.Weight(17.99)},
	{Classification: "P3", Category: models.CategoryDressed, MinWeight: models.Weight(15), MaxWeight: models.Weight(16.49)},
	{Classification: "P2", Category: models.CategoryDressed, MinWeight: models.Weight(13.5), MaxWeight: models.Weight(14.99)},
	{Classification: "P1", Category: models.CategoryDressed, MinWeight: models.Weight(12), MaxWeight: models.Weight(13.49)},
	{Classification: "US", Category: models.CategoryDressed, MinWeight: models.Weight(10.5), MaxWeight: models.Weight(11.99)},
	{Classification: "SQ", Category: models.CategoryDressed, MaxWeight: models.Weight(10.49)},
	{Classification: "LV", Category: models.CategoryByproduct, Description: "Liver"},
	{Classification: "GZ", Category: models.CategoryByproduct, Description: "Gizzard"},
	{Classification: "SI", Category: models.CategoryByproduct, Description: "Small Intestine"},
	{Classification: "FT", Category: models.CategoryByproduct, Description: "Feet"},
	{Classification: "PV", Category: models.CategoryByproduct, Description: "Proven"},
	{Classification: "HD", Category: models.CategoryByproduct, Description: "Head"},
	{Classification: "BLD", Category: models.CategoryByproduct, Description: "Blood"},
}

// SeedResult counts what SeedStandardClassifications did.
type SeedResult struct {
	Created int
	Skipped int
	Failed  []error
}

// SeedStandardClassifications adds the standard classifications to a
// plant. Names the plant already has are skipped. A classification that
// fails validation is recorded in Failed and seeding continues.
func (s *SQLiteStore) SeedStandardClassifications(ctx context.Context, plantID int64) (*SeedResult, error) {
	existing, err := s.ListClassifications(ctx, plantID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, wc := range existing {
		have[strings.ToLower(wc.Classification)] = true
	}

	result := &SeedResult{}
	for _, std := range StandardClassifications {
		if have[strings.ToLower(std.Classification)] {
			result.Skipped++
			continue
		}
		wc := std
		wc.PlantID = plantID
		if err := s.CreateClassification(ctx, &wc); err != nil {
			slog.Warn("Failed to seed classification", "plant_id", plantID, "classification", wc.Classification, "error", err)
			result.Failed = append(result.Failed, fmt.Errorf("%s: %w", wc.Classification, err))
			continue
		}
		result.Created++
	}
	return result, nil
}
