package models

import (
	"fmt"
	"time"
)

// Role is the counting perspective an entry was logged under.
type Role string

const (
	RoleTally      Role = "tally"
	RoleDispatcher Role = "dispatcher"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTally, RoleDispatcher:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// TallyLogEntry is one logged bag. Entries are immutable once created.
type TallyLogEntry struct {
	ID                     int64     `json:"id"`
	SessionID              int64     `json:"tally_session_id"`
	WeightClassificationID int64     `json:"weight_classification_id"`
	Role                   Role      `json:"role"`
	Weight                 float64   `json:"weight"`
	Heads                  int       `json:"heads"`
	Notes                  string    `json:"notes,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}
