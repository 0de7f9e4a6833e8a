package storage

import (
	"context"

	"github.com/iudanet/credgate/internal/models"
)

// UserStorage defines interface for credential persistence.
// Every method is a single atomic operation against the backing store.
type UserStorage interface {
	// CreateUser inserts a new user and returns the assigned ID
	// Returns ErrUserAlreadyExists if email already exists
	CreateUser(ctx context.Context, email, passwordHash string) (int64, error)

	// GetUserByEmail retrieves user by email (case-sensitive)
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePasswordHash replaces the password hash of the user with this email
	// Returns the number of affected rows; 0 means no such user
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) (int64, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying resources
	Close() error
}
