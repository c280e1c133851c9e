// Package storage defines the persistence collaborator the tally engine
// reads classifications, allocations and log entries from.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/tallysheet/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// TallyStore is what the tally services need. Both the local SQLite store
// and the upstream REST client implement it.
type TallyStore interface {
	// ListClassifications returns a plant's classifications in their
	// configured order.
	ListClassifications(ctx context.Context, plantID int64) ([]models.WeightClassification, error)

	GetClassification(ctx context.Context, id int64) (*models.WeightClassification, error)

	// ListAllocations returns a session's allocations, tagged with the view
	// the caller is allowed to see.
	ListAllocations(ctx context.Context, sessionID int64) ([]models.AllocationView, error)

	// CreateLogEntry persists entry and increments the allocation counter
	// for its role by one. An allocation with zero required bags is created
	// when the session has none for the classification. entry.ID and
	// entry.CreatedAt are populated by the store.
	CreateLogEntry(ctx context.Context, sessionID int64, entry *models.TallyLogEntry) error

	// ListLogEntries returns a session's entries, newest first. A nil role
	// returns both roles.
	ListLogEntries(ctx context.Context, sessionID int64, role *models.Role) ([]models.TallyLogEntry, error)

	// GetSession returns the session with its customer name filled in.
	GetSession(ctx context.Context, id int64) (*models.TallySession, error)

	// GetPreferences returns the user's preferences. Users without stored
	// preferences get an empty Preferences, not an error.
	GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error)
	UpdateClassificationOrder(ctx context.Context, userID int64, category models.Category, ids []int64) (*models.Preferences, error)
	ResetClassificationOrder(ctx context.Context, userID int64) (*models.Preferences, error)
}

// SessionFilter narrows ListSessions. Zero fields match everything.
type SessionFilter struct {
	CustomerID int64
	PlantID    int64
	From       time.Time
	To         time.Time
	Status     models.SessionStatus
}

// Store adds the administration used by seeding, the CLI and tests.
type Store interface {
	TallyStore

	CreatePlant(ctx context.Context, plant *models.Plant) error
	GetPlantByName(ctx context.Context, name string) (*models.Plant, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	CreateSession(ctx context.Context, session *models.TallySession) error
	ListSessions(ctx context.Context, filter SessionFilter) ([]models.TallySession, error)
	CreateClassification(ctx context.Context, wc *models.WeightClassification) error

	// SetRequiredBags sets the requirement for a classification in a
	// session, creating the allocation if needed. Counters are untouched.
	SetRequiredBags(ctx context.Context, sessionID, classificationID int64, required int) (*models.AllocationDetail, error)

	// Close releases any resources held by the store.
	Close() error
}
