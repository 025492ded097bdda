package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and fills ID and timestamps. A username or email that is
	// already taken yields ErrDuplicate.
	Create(ctx context.Context, u *entity.User) error
	// GetByID returns ErrNotFound when absent and ErrMalformedID when id has
	// the wrong shape for the store.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
