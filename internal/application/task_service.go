package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
	"github.com/oksasatya/go-ddd-task-manager/pkg/validation"
)

// TaskService is the owner-scoped task API. Indexer and Exports are optional.
type TaskService struct {
	Tasks   repo.TaskRepository
	Indexer TaskIndexer
	Exports ObjectUploader
	Logger  *logrus.Logger

	now func() time.Time
}

func NewTaskService(tasks repo.TaskRepository, logger *logrus.Logger) *TaskService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &TaskService{Tasks: tasks, Logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ListTasksQuery holds raw query values; an unknown status is ignored.
type ListTasksQuery struct {
	Status string
	Search string
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      entity.TaskStatus
}

// UpdateTaskInput fields are applied only when non-nil.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *entity.TaskStatus
}

type ExportResult struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

var (
	titleRule       = fmt.Sprintf("max=%d", entity.TaskTitleMaxLen)
	descriptionRule = fmt.Sprintf("max=%d", entity.TaskDescriptionMaxLen)
)

func (in CreateTaskInput) normalize() (CreateTaskInput, error) {
	out := CreateTaskInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
	}
	if out.Status == "" {
		out.Status = entity.TaskStatusPending
	}
	var errs validation.Errors
	errs = append(errs, validation.Var("title", out.Title, "required,"+titleRule)...)
	errs = append(errs, validation.Var("description", out.Description, descriptionRule)...)
	errs = append(errs, validation.Var("status", string(out.Status), "taskstatus")...)
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

func (in UpdateTaskInput) patch() (entity.TaskPatch, error) {
	var (
		p    entity.TaskPatch
		errs validation.Errors
	)
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			errs = append(errs, "title cannot be empty")
		} else {
			errs = append(errs, validation.Var("title", title, titleRule)...)
		}
		p.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		errs = append(errs, validation.Var("description", desc, descriptionRule)...)
		p.Description = &desc
	}
	if in.Status != nil {
		st := *in.Status
		errs = append(errs, validation.Var("status", string(st), "taskstatus")...)
		p.Status = &st
	}
	if len(errs) > 0 {
		return p, errs
	}
	return p, nil
}

func taskErr(op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrTaskNotFound
	case errors.Is(err, repo.ErrMalformedID):
		return repo.ErrMalformedID
	default:
		return fmt.Errorf("%s task: %w", op, err)
	}
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string, q ListTasksQuery) ([]entity.Task, error) {
	f := entity.TaskFilter{Search: strings.TrimSpace(q.Search)}
	if st := entity.TaskStatus(strings.TrimSpace(q.Status)); st.Valid() {
		f.Status = st
	}
	tasks, err := s.Tasks.List(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	t, err := s.Tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, taskErr("get", err)
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*entity.Task, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	t := &entity.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		OwnerID:     ownerID,
	}
	if err := s.Tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	metricTasksCreated.Add(1)
	s.index(ctx, t)
	return t, nil
}

// Update applies in atomically. An empty input only refreshes updatedAt.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, in UpdateTaskInput) (*entity.Task, error) {
	p, err := in.patch()
	if err != nil {
		return nil, err
	}
	t, err := s.Tasks.Update(ctx, ownerID, id, p)
	if err != nil {
		return nil, taskErr("update", err)
	}
	metricTasksUpdated.Add(1)
	s.index(ctx, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	t, err := s.Tasks.Delete(ctx, ownerID, id)
	if err != nil {
		return taskErr("delete", err)
	}
	metricTasksDeleted.Add(1)
	if s.Indexer != nil {
		if ierr := s.Indexer.Remove(ctx, ownerID, t.ID); ierr != nil {
			s.Logger.WithError(ierr).WithField("task_id", t.ID).Warn("remove task from index failed")
		}
	}
	return nil
}

type taskExport struct {
	Owner      string        `json:"owner"`
	ExportedAt time.Time     `json:"exportedAt"`
	Tasks      []entity.Task `json:"tasks"`
}

// Export uploads the owner's full task list as a JSON document.
func (s *TaskService) Export(ctx context.Context, ownerID string) (*ExportResult, error) {
	if s.Exports == nil {
		return nil, ErrExportUnavailable
	}
	tasks, err := s.List(ctx, ownerID, ListTasksQuery{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	b, err := json.Marshal(taskExport{Owner: ownerID, ExportedAt: now, Tasks: tasks})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	path := fmt.Sprintf("exports/%s/%s-%s.json", ownerID, now.Format("20060102T150405Z"), uuid.NewString()[:8])
	url, err := s.Exports.Upload(ctx, path, "application/json", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": ownerID, "count": len(tasks), "object": path}).Info("tasks exported")
	return &ExportResult{URL: url, Count: len(tasks)}, nil
}

func (s *TaskService) index(ctx context.Context, t *entity.Task) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, t); err != nil {
		s.Logger.WithError(err).WithField("task_id", t.ID).Warn("index task failed")
	}
}
