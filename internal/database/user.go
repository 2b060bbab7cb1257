package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tectoast/wizard/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	username   VARCHAR(30) PRIMARY KEY,
	password   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// UserStore reads and writes the users table.
type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

// EnsureSchema creates the users table if it does not exist yet.
func (s *UserStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// CreateUser inserts a user. An empty hash leaves the account unclaimed.
func (s *UserStore) CreateUser(ctx context.Context, username, passwordHash string) error {
	var hash *string
	if passwordHash != "" {
		hash = &passwordHash
	}
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, `INSERT INTO users (username, password) VALUES ($1, $2)`, username, hash)
		return execErr
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser looks a user up by name.
func (s *UserStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, `SELECT username, password FROM users WHERE username=$1`, username).
		Scan(&u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// SetPassword stores a new password hash.
func (s *UserStore) SetPassword(ctx context.Context, username, passwordHash string) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET password=$1 WHERE username=$2`, passwordHash, username)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
