// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

const dateLayout = "2006-01-02"

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Allocation increments rely on one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreatePlant inserts a plant and sets its ID.
func (s *SQLiteStore) CreatePlant(ctx context.Context, plant *models.Plant) error {
	res, err := s.db.ExecContext(ctx, "INSERT INTO plants (name) VALUES (?)", plant.Name)
	if err != nil {
		return fmt.Errorf("failed to create plant: %w", err)
	}
	plant.ID, err = res.LastInsertId()
	return err
}

// GetPlantByName looks a plant up case-insensitively.
func (s *SQLiteStore) GetPlantByName(ctx context.Context, name string) (*models.Plant, error) {
	plant := &models.Plant{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM plants WHERE name = ? COLLATE NOCASE",
		strings.TrimSpace(name),
	).Scan(&plant.ID, &plant.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plant %q: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}
	return plant, nil
}

// CreateCustomer inserts a customer and sets its ID.
func (s *SQLiteStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	res, err := s.db.ExecContext(ctx, "INSERT INTO customers (name) VALUES (?)", customer.Name)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	customer.ID, err = res.LastInsertId()
	return err
}

// CreateSession inserts a tally session. Status defaults to ongoing and
// date to today.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.TallySession) error {
	if session.Status == "" {
		session.Status = models.SessionOngoing
	}
	if session.Date.IsZero() {
		session.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tally_sessions (customer_id, plant_id, date, status) VALUES (?, ?, ?, ?)",
		session.CustomerID, session.PlantID, session.Date.Format(dateLayout), session.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if session.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx, "SELECT name FROM customers WHERE id = ?", session.CustomerID).Scan(&session.CustomerName)
	if err != nil {
		return fmt.Errorf("failed to get customer name: %w", err)
	}
	return nil
}

const sessionColumns = `
	SELECT s.id, s.customer_id, c.name, s.plant_id, s.date, s.status
	FROM tally_sessions s
	JOIN customers c ON c.id = s.customer_id
`

// GetSession returns a session with its customer name.
func (s *SQLiteStore) GetSession(ctx context.Context, id int64) (*models.TallySession, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx, sessionColumns+" WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessions returns the sessions matching filter, newest date first.
func (s *SQLiteStore) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]models.TallySession, error) {
	var (
		where []string
		args  []any
	)
	if filter.CustomerID != 0 {
		where = append(where, "s.customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.PlantID != 0 {
		where = append(where, "s.plant_id = ?")
		args = append(args, filter.PlantID)
	}
	if !filter.From.IsZero() {
		where = append(where, "s.date >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if !filter.To.IsZero() {
		where = append(where, "s.date <= ?")
		args = append(args, filter.To.Format(dateLayout))
	}
	if filter.Status != "" {
		where = append(where, "s.status = ?")
		args = append(args, filter.Status)
	}

	query := sessionColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.date DESC, s.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.TallySession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.TallySession, error) {
	var (
		session models.TallySession
		date    string
	)
	if err := row.Scan(&session.ID, &session.CustomerID, &session.CustomerName, &session.PlantID, &date, &session.Status); err != nil {
		return nil, err
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid session date %q: %w", date, err)
	}
	session.Date = d
	return &session, nil
}
