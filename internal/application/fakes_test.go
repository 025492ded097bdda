package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-manager/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
)

func newAuthService() (*AuthService, *memory.Store) {
	store := memory.NewStore()
	svc := NewAuthService(store, helpers.NewJWTManager("test-secret", time.Hour), bcrypt.MinCost, nil)
	return svc, store
}

type fakeCache struct {
	mu    sync.Mutex
	users map[string]entity.User
	gets  int
}

func (c *fakeCache) Get(_ context.Context, id string) (*entity.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	u, ok := c.users[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (c *fakeCache) Set(_ context.Context, u *entity.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.users == nil {
		c.users = map[string]entity.User{}
	}
	c.users[u.ID] = *u
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

type fakeIndexer struct {
	indexed map[string]entity.Task
	fail    bool
}

func (x *fakeIndexer) Index(_ context.Context, t *entity.Task) error {
	if x.fail {
		return errors.New("index down")
	}
	if x.indexed == nil {
		x.indexed = map[string]entity.Task{}
	}
	x.indexed[t.ID] = *t
	return nil
}

func (x *fakeIndexer) Remove(_ context.Context, _, id string) error {
	if x.fail {
		return errors.New("index down")
	}
	delete(x.indexed, id)
	return nil
}

type fakeUploader struct {
	path        string
	contentType string
	body        []byte
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.path, u.contentType, u.body = objectPath, contentType, b
	return helpers.PublicURL("bucket", objectPath), nil
}
