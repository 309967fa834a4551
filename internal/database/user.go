package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gianlucanapo/terrazzo-manager/internal/auth"
	"github.com/gianlucanapo/terrazzo-manager/internal/models"
)

// CreateUser hashes the user's password and inserts the row. The caller's
// plaintext password field is replaced by the hash.
func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, username, password, is_admin) VALUES ($1, $2, $3, $4)`
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, user.ID, user.Username, user.Password, user.IsAdmin)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	q := `SELECT id, username, password, is_admin FROM users WHERE username=$1`
	err := DB.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.Password, &u.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AuthenticateUser checks the credentials and returns a signed session token.
func AuthenticateUser(ctx context.Context, username, password string) (string, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("user not found or db error: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.IssueToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}
	return token, nil
}
