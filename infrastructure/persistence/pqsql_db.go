package persistence

import (
	"database/sql"
	"fmt"

	"channelhub/infrastructure/configuration"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens the relational store holding user accounts.
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureUserSchema creates the user table if it does not exist.
func EnsureUserSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS public.user (
        id BIGSERIAL PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password TEXT NOT NULL,
        connected_channels JSONB NOT NULL DEFAULT '{}'::jsonb,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create user table: %w", err)
	}
	return nil
}
