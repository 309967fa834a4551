package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gianlucanapo/terrazzo-manager/internal/models"
)

func AddDonation(ctx context.Context, d *models.Donation) error {
	if d.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate donation id: %w", err)
		}
		d.ID = id
	}

	q := `INSERT INTO donations (id, donor_name, username, amount) VALUES ($1, $2, $3, $4)`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, d.ID, d.DonorName, d.Username, d.Amount)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}
	return nil
}

// ListDonations returns the ledger, most recent first.
func ListDonations(ctx context.Context) ([]*models.Donation, error) {
	rows, err := DB.Query(ctx, `
		SELECT id, donor_name, username, amount, donated_at
		FROM donations ORDER BY donated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.DonorName, &d.Username, &d.Amount, &d.DonatedAt); err != nil {
			return nil, err
		}
		donations = append(donations, &d)
	}
	return donations, rows.Err()
}

// GetGoalProgress returns the fund goal together with the donated total.
func GetGoalProgress(ctx context.Context) (*models.GoalProgress, error) {
	var p models.GoalProgress
	q := `
	SELECT g.description, g.target, COALESCE((SELECT SUM(amount) FROM donations), 0)
	FROM fund_goal g WHERE g.id = 1
	`
	if err := DB.QueryRow(ctx, q).Scan(&p.Description, &p.Target, &p.Total); err != nil {
		return nil, err
	}
	return &p, nil
}
