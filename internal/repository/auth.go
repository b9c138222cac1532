// Package repository provides persistence implementations for the habit
// service using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/inhabitapp/inhabit/internal/models"
)

// PostgresAuthRepository implements user and token persistence against
// a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the
// given database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new user record.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	)
	return err
}

// GetUserByEmail fetches a user by email address.
// Returns sql.ErrNoRows when no such user exists.
func (r *PostgresAuthRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID fetches a user by its identifier.
func (r *PostgresAuthRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveToken stores a bearer token for the user with an expiry.
func (r *PostgresAuthRepository) SaveToken(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt,
	)
	return err
}

// GetUserIDByToken resolves an unexpired bearer token to a user id.
// Returns sql.ErrNoRows for unknown or expired tokens.
func (r *PostgresAuthRepository) GetUserIDByToken(ctx context.Context, token string) (string, error) {
	var userID string
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id FROM tokens WHERE token = $1 AND expires_at > now()
	`, token).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

// DeleteToken revokes a bearer token.
func (r *PostgresAuthRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	return err
}
