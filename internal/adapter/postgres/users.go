package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bakeshop/internal/adapter/auth"
)

// UserStore persists accounts in the users table.
type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user auth.UserRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, role, verified, provider, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::timestamptz)
	`, user.ID, user.Email, user.PasswordHash, user.FullName, user.Role, user.Verified, user.Provider, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, role, verified, provider,
		       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		FROM users WHERE email = $1
	`, email))
}

func (s *UserStore) ByID(ctx context.Context, id string) (*auth.UserRecord, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, role, verified, provider,
		       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		FROM users WHERE id = $1
	`, id))
}

func (s *UserStore) SetPassword(ctx context.Context, id, hash string) error {
	affected, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (s *UserStore) SetVerified(ctx context.Context, id string) error {
	affected, err := s.db.Exec(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (s *UserStore) scanOne(row Row) (*auth.UserRecord, error) {
	var user auth.UserRecord
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Role, &user.Verified, &user.Provider, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
