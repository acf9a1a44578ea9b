package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// UserDirectory reads the users table owned by the auth service
type UserDirectory struct {
	db *DB
}

// NewUserDirectory creates a new user directory
func NewUserDirectory(db *DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// GetUser retrieves a user by ID
func (d *UserDirectory) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, username, full_name, fraud_checking FROM users WHERE id = $1`

	var u domain.User
	err := d.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.FullName, &u.FraudChecking)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// PutUser inserts or replaces a user, used by the demo seeder
func (d *UserDirectory) PutUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, full_name, fraud_checking)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, full_name = EXCLUDED.full_name, fraud_checking = EXCLUDED.fraud_checking
	`

	if _, err := d.db.ExecContext(ctx, query, user.ID, user.Username, user.FullName, user.FraudChecking); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

var _ domain.UserDirectory = (*UserDirectory)(nil)
