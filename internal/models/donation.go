package models

import (
	"time"

	"github.com/google/uuid"
)

// Donation is one entry in the shared fund ledger. DonorName is the display
// name on the ledger; Username links the donation to an account when the
// donor was logged in.
type Donation struct {
	ID        uuid.UUID `json:"id"`
	DonorName string    `json:"donor_name"`
	Username  string    `json:"username,omitempty"`
	Amount    float64   `json:"amount"`
	DonatedAt time.Time `json:"donated_at"`
}

// Goal is the single fund target row.
type Goal struct {
	Description string  `json:"description"`
	Target      float64 `json:"target"`
}

// GoalProgress pairs the goal with the ledger's running total.
type GoalProgress struct {
	Goal
	Total float64 `json:"total"`
}
