package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gianlucanapo/terrazzo-manager/internal/models"
)

var (
	// ErrSlotFull means the slot has no free seats left.
	ErrSlotFull = errors.New("slot is full")
	// ErrAlreadyBooked means the user already holds a booking on the slot.
	ErrAlreadyBooked = errors.New("already booked")
	// ErrNotBooked means the user has no booking on the slot.
	ErrNotBooked = errors.New("no booking for user")
)

func CreateSlot(ctx context.Context, slot *models.Slot) error {
	if slot.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate slot id: %w", err)
		}
		slot.ID = id
	}

	q := `INSERT INTO slots (id, date, time, theme, description, created_by, confirmed)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			slot.ID, slot.Date, slot.Time, slot.Theme,
			slot.Description, slot.CreatedBy, slot.Confirmed,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert slot: %w", err)
	}
	return nil
}

// ListSlots returns every slot with its seat count, soonest first.
func ListSlots(ctx context.Context) ([]*models.Slot, error) {
	q := `
	SELECT s.id, s.date, s.time, s.theme, s.description, s.created_by, s.confirmed,
	       COALESCE(SUM(CASE WHEN b.plus_one THEN 2 ELSE 1 END), 0) AS seats_taken
	FROM slots s
	LEFT JOIN bookings b ON b.slot_id = s.id
	GROUP BY s.id
	ORDER BY s.date, s.time
	`
	rows, err := DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		var s models.Slot
		if err := rows.Scan(&s.ID, &s.Date, &s.Time, &s.Theme, &s.Description,
			&s.CreatedBy, &s.Confirmed, &s.SeatsTaken); err != nil {
			return nil, err
		}
		slots = append(slots, &s)
	}
	return slots, rows.Err()
}

func GetSlot(ctx context.Context, id uuid.UUID) (*models.Slot, error) {
	var s models.Slot
	q := `
	SELECT s.id, s.date, s.time, s.theme, s.description, s.created_by, s.confirmed,
	       COALESCE((SELECT SUM(CASE WHEN plus_one THEN 2 ELSE 1 END)
	                 FROM bookings WHERE slot_id = s.id), 0)
	FROM slots s WHERE s.id = $1
	`
	err := DB.QueryRow(ctx, q, id).Scan(&s.ID, &s.Date, &s.Time, &s.Theme,
		&s.Description, &s.CreatedBy, &s.Confirmed, &s.SeatsTaken)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// BookSlot reserves a seat (two with a plus-one) for username. The seat count
// is re-checked inside the transaction, so two racing bookings cannot
// oversell the slot.
func BookSlot(ctx context.Context, slotID uuid.UUID, username string, plusOne bool) error {
	needed := 1
	if plusOne {
		needed = 2
	}

	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// Lock the slot row so concurrent bookings on the same slot queue up.
		var one int
		if err := tx.QueryRow(ctx,
			`SELECT 1 FROM slots WHERE id = $1 FOR UPDATE`, slotID).Scan(&one); err != nil {
			return err
		}

		var taken int
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(CASE WHEN plus_one THEN 2 ELSE 1 END), 0)
			FROM bookings WHERE slot_id = $1`, slotID).Scan(&taken)
		if err != nil {
			return err
		}
		if taken+needed > models.SlotCapacity {
			return ErrSlotFull
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM bookings WHERE slot_id=$1 AND username=$2)`,
			slotID, username).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrAlreadyBooked
		}

		id, err := uuid.NewRandom()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO bookings (id, slot_id, username, plus_one) VALUES ($1, $2, $3, $4)`,
			id, slotID, username, plusOne)
		return err
	})
}

// CancelBooking removes username's booking and promotes the oldest waitlist
// entry, if any, into a plain booking.
func CancelBooking(ctx context.Context, slotID uuid.UUID, username string) (promoted string, err error) {
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctx,
			`DELETE FROM bookings WHERE slot_id=$1 AND username=$2`, slotID, username)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return ErrNotBooked
		}

		var entryID uuid.UUID
		var next string
		scanErr := tx.QueryRow(ctx, `
			SELECT id, username FROM waitlist
			WHERE slot_id = $1 ORDER BY joined_at LIMIT 1`, slotID).Scan(&entryID, &next)
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil
		}
		if scanErr != nil {
			return scanErr
		}

		if _, execErr := tx.Exec(ctx, `DELETE FROM waitlist WHERE id=$1`, entryID); execErr != nil {
			return execErr
		}
		bookingID, idErr := uuid.NewRandom()
		if idErr != nil {
			return idErr
		}
		if _, execErr := tx.Exec(ctx,
			`INSERT INTO bookings (id, slot_id, username, plus_one) VALUES ($1, $2, $3, FALSE)`,
			bookingID, slotID, next); execErr != nil {
			return execErr
		}
		promoted = next
		return nil
	})
	return promoted, err
}

func JoinWaitlist(ctx context.Context, slotID uuid.UUID, username string) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	_, err = DB.Exec(ctx,
		`INSERT INTO waitlist (id, slot_id, username) VALUES ($1, $2, $3)
		 ON CONFLICT (slot_id, username) DO NOTHING`, id, slotID, username)
	if err != nil {
		return fmt.Errorf("failed to join waitlist: %w", err)
	}
	return nil
}

func AddBringing(ctx context.Context, slotID uuid.UUID, username, item string) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	_, err = DB.Exec(ctx,
		`INSERT INTO bringing (id, slot_id, username, item) VALUES ($1, $2, $3, $4)`,
		id, slotID, username, item)
	if err != nil {
		return fmt.Errorf("failed to record item: %w", err)
	}
	return nil
}

func ListBringing(ctx context.Context, slotID uuid.UUID) ([]*models.Bringing, error) {
	rows, err := DB.Query(ctx,
		`SELECT id, slot_id, username, item FROM bringing WHERE slot_id=$1`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Bringing
	for rows.Next() {
		var b models.Bringing
		if err := rows.Scan(&b.ID, &b.SlotID, &b.Username, &b.Item); err != nil {
			return nil, err
		}
		items = append(items, &b)
	}
	return items, rows.Err()
}

// NextAvailableSlot returns the soonest confirmed future slot that still has
// a free seat, or nil when none exists.
func NextAvailableSlot(ctx context.Context) (*models.Slot, error) {
	today := time.Now().Format("2006-01-02")
	var s models.Slot
	q := `
	SELECT s.id, s.date, s.time, s.theme, s.description, s.created_by, s.confirmed,
	       COALESCE(SUM(CASE WHEN b.plus_one THEN 2 ELSE 1 END), 0) AS seats_taken
	FROM slots s
	LEFT JOIN bookings b ON b.slot_id = s.id
	WHERE s.confirmed AND s.date >= $1
	GROUP BY s.id
	HAVING COALESCE(SUM(CASE WHEN b.plus_one THEN 2 ELSE 1 END), 0) < $2
	ORDER BY s.date, s.time
	LIMIT 1
	`
	err := DB.QueryRow(ctx, q, today, models.SlotCapacity).Scan(
		&s.ID, &s.Date, &s.Time, &s.Theme, &s.Description,
		&s.CreatedBy, &s.Confirmed, &s.SeatsTaken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CleanupPastSlots deletes slots whose start time has passed; bookings,
// waitlist entries, items, and messages go with them via cascade. Returns the
// number of slots removed.
func CleanupPastSlots(ctx context.Context) (int64, error) {
	now := time.Now().Format("2006-01-02 15:04")
	tag, err := DB.Exec(ctx,
		`DELETE FROM slots WHERE date || ' ' || time < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
