package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

// ConnectDB creates the global pgx pool from POSTGRES_USER/POSTGRES_PASSWORD/
// PG_HOST/PG_PORT/PG_DATABASE and verifies it with a ping. Startup-fatal.
func ConnectDB() {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	log.Printf("connected to database %s at %s", os.Getenv("PG_DATABASE"), os.Getenv("PG_HOST"))
}

// EnsureSchema creates the tables the service needs when they do not exist
// yet, including the single fund goal row.
func EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS slots (
			id UUID PRIMARY KEY,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			theme TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL,
			confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (date, time)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			slot_id UUID NOT NULL REFERENCES slots(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			plus_one BOOLEAN NOT NULL DEFAULT FALSE,
			booked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (slot_id, username)
		)`,
		`CREATE TABLE IF NOT EXISTS waitlist (
			id UUID PRIMARY KEY,
			slot_id UUID NOT NULL REFERENCES slots(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (slot_id, username)
		)`,
		`CREATE TABLE IF NOT EXISTS bringing (
			id UUID PRIMARY KEY,
			slot_id UUID NOT NULL REFERENCES slots(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			item TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS donations (
			id UUID PRIMARY KEY,
			donor_name TEXT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			amount DOUBLE PRECISION NOT NULL,
			donated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS fund_goal (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			description TEXT NOT NULL,
			target DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			slot_id UUID NOT NULL REFERENCES slots(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			body TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS casino_actions (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			action TEXT NOT NULL,
			detail JSONB,
			happened_at TIMESTAMPTZ NOT NULL
		)`,
		`INSERT INTO fund_goal (id, description, target)
		 VALUES (1, 'Fondo Serate', 100.0)
		 ON CONFLICT (id) DO NOTHING`,
	}

	for _, stmt := range stmts {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}
	return nil
}
