package models

import "time"

// SessionStatus is the lifecycle state of a tally session.
type SessionStatus string

const (
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Plant owns a set of weight classifications.
type Plant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Customer is the party a tally session is run for.
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TallySession is one day's tally for a customer at a plant.
type TallySession struct {
	ID           int64         `json:"id"`
	CustomerID   int64         `json:"customer_id"`
	CustomerName string        `json:"customer_name,omitempty"`
	PlantID      int64         `json:"plant_id"`
	Date         time.Time     `json:"date"`
	Status       SessionStatus `json:"status"`
}
