package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
)

// UserCache is the optional identity cache consulted by Authenticate.
type UserCache interface {
	Get(ctx context.Context, id string) (*entity.User, bool, error)
	Set(ctx context.Context, u *entity.User) error
}

// EmailPublisher enqueues email jobs for the email worker.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// TaskIndexer mirrors tasks into a search index.
type TaskIndexer interface {
	Index(ctx context.Context, t *entity.Task) error
	Remove(ctx context.Context, ownerID, id string) error
}

// ObjectUploader stores task exports and returns their URL.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
