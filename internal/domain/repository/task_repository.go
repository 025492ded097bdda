package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
)

// TaskRepository is owner-scoped: there is no method that reaches a task
// without the owner's id in its predicate.
type TaskRepository interface {
	// List returns the owner's tasks, newest first.
	List(ctx context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error)
	GetByID(ctx context.Context, ownerID, id string) (*entity.Task, error)
	// Create inserts t (t.OwnerID must be set) and fills ID and timestamps.
	Create(ctx context.Context, t *entity.Task) error
	// Update applies p only when id and owner both match, atomically.
	Update(ctx context.Context, ownerID, id string, p entity.TaskPatch) (*entity.Task, error)
	// Delete removes the task only when id and owner both match and returns it.
	Delete(ctx context.Context, ownerID, id string) (*entity.Task, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
