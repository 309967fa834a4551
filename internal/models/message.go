package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one line of a slot's chat log.
type Message struct {
	ID       uuid.UUID `json:"id"`
	SlotID   uuid.UUID `json:"slot_id"`
	Username string    `json:"username"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}
