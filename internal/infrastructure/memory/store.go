// Package memory is a process-local store for local development and tests.
// It honours the same contracts as the postgres and mongodb stores: UUID
// identifiers, unique username/email, and owner-scoped task predicates.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
)

type storedTask struct {
	task entity.Task
	seq  uint64
}

// Store implements repository.UserRepository; Tasks exposes the task side.
type Store struct {
	mu    sync.RWMutex
	users map[string]entity.User
	tasks map[string]storedTask
	seq   uint64
	now   func() time.Time
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.Pinger         = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		users: make(map[string]entity.User),
		tasks: make(map[string]storedTask),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrMalformedID
	}
	return nil
}

func (s *Store) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := s.now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Tasks returns a view of s as a task repository; the method sets of the two
// repositories overlap on names like Create and GetByID.
func (s *Store) Tasks() *TaskStore { return &TaskStore{s: s} }

// TaskStore is the task half of Store.
type TaskStore struct{ s *Store }

var _ repository.TaskRepository = (*TaskStore)(nil)

func matches(t entity.Task, f entity.TaskFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func (ts *TaskStore) List(_ context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	found := make([]storedTask, 0)
	for _, st := range ts.s.tasks {
		if st.task.OwnerID == ownerID && matches(st.task, f) {
			found = append(found, st)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]entity.Task, len(found))
	for i, st := range found {
		out[i] = st.task
	}
	return out, nil
}

func (ts *TaskStore) GetByID(_ context.Context, ownerID, id string) (*entity.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	st, ok := ts.s.tasks[id]
	if !ok || st.task.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	t := st.task
	return &t, nil
}

func (ts *TaskStore) Create(_ context.Context, t *entity.Task) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	now := ts.s.now()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = now, now
	ts.s.seq++
	ts.s.tasks[t.ID] = storedTask{task: *t, seq: ts.s.seq}
	return nil
}

func (ts *TaskStore) Update(_ context.Context, ownerID, id string, p entity.TaskPatch) (*entity.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	st, ok := ts.s.tasks[id]
	if !ok || st.task.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if p.Title != nil {
		st.task.Title = *p.Title
	}
	if p.Description != nil {
		st.task.Description = *p.Description
	}
	if p.Status != nil {
		st.task.Status = *p.Status
	}
	st.task.UpdatedAt = ts.s.now()
	ts.s.tasks[id] = st
	t := st.task
	return &t, nil
}

func (ts *TaskStore) Delete(_ context.Context, ownerID, id string) (*entity.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	st, ok := ts.s.tasks[id]
	if !ok || st.task.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	delete(ts.s.tasks, id)
	t := st.task
	return &t, nil
}
