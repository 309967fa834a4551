package models

import (
	"time"

	"github.com/google/uuid"
)

// SlotCapacity is the number of seats available per event, counting both
// bookings and their plus-ones.
const SlotCapacity = 10

// Slot is one bookable terrace evening. Date and Time are stored as the
// original strings ("2006-01-02", "15:04"); the pair is unique.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Theme       string    `json:"theme"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	Confirmed   bool      `json:"confirmed"`

	// Populated by list queries, not stored.
	SeatsTaken int `json:"seats_taken"`
}

// StartsAt parses the slot's date and time in the server's local zone.
func (s *Slot) StartsAt() (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.Time, time.Local)
}

// Booking is one confirmed seat (plus an optional guest) on a slot.
type Booking struct {
	ID       uuid.UUID `json:"id"`
	SlotID   uuid.UUID `json:"slot_id"`
	Username string    `json:"username"`
	PlusOne  bool      `json:"plus_one"`
	BookedAt time.Time `json:"booked_at"`
}

// Seats is how many of the slot's seats this booking consumes.
func (b *Booking) Seats() int {
	if b.PlusOne {
		return 2
	}
	return 1
}

// WaitlistEntry queues a user for a full slot. Entries are promoted in
// JoinedAt order when a booking is cancelled.
type WaitlistEntry struct {
	ID       uuid.UUID `json:"id"`
	SlotID   uuid.UUID `json:"slot_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// Bringing is one item a guest volunteered to bring to a slot.
type Bringing struct {
	ID       uuid.UUID `json:"id"`
	SlotID   uuid.UUID `json:"slot_id"`
	Username string    `json:"username"`
	Item     string    `json:"item"`
}
