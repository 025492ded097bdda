package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

// List matches search as a literal substring: strpos does no pattern matching.
func (r *TaskRepository) List(ctx context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR strpos(lower(title), lower($3)) > 0 OR strpos(lower(description), lower($3)) > 0)
		ORDER BY created_at DESC, id DESC
	`, ownerID, string(f.Status), f.Search)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, mapErr(rows.Err())
}

func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2
	`, id, ownerID))
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Description, string(t.Status), t.OwnerID)

	return mapErr(row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

func (r *TaskRepository) Update(ctx context.Context, ownerID, id string, p entity.TaskPatch) (*entity.Task, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	return scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    status = COALESCE($5, status),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns, id, ownerID, p.Title, p.Description, status))
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		DELETE FROM tasks WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns, id, ownerID))
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
