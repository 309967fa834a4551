package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gianlucanapo/terrazzo-manager/internal/models"
)

func AddMessage(ctx context.Context, m *models.Message) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate message id: %w", err)
		}
		m.ID = id
	}

	_, err := DB.Exec(ctx,
		`INSERT INTO messages (id, slot_id, username, body) VALUES ($1, $2, $3, $4)`,
		m.ID, m.SlotID, m.Username, m.Body)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListMessages returns a slot's chat log in send order.
func ListMessages(ctx context.Context, slotID uuid.UUID) ([]*models.Message, error) {
	rows, err := DB.Query(ctx, `
		SELECT id, slot_id, username, body, sent_at
		FROM messages WHERE slot_id = $1 ORDER BY sent_at`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SlotID, &m.Username, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
