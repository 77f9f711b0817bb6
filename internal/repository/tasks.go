package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
)

// TaskRepository — очередь ad-hoc задач (mcpsync_tasks).
type TaskRepository interface {
	// Enqueue добавляет задачу в очередь и заполняет ID, Status, CreatedAt.
	Enqueue(ctx context.Context, task *model.Task) error
	// ClaimNext забирает одну готовую к запуску задачу (status=running, attempts+1).
	// Если задач нет — ErrNotFound.
	ClaimNext(ctx context.Context) (*model.Task, error)
	// Complete помечает задачу выполненной.
	Complete(ctx context.Context, id string) error
	// Retry возвращает задачу в очередь с отложенным запуском.
	Retry(ctx context.Context, id string, runAfter time.Time, lastError string) error
	// Fail помечает задачу окончательно неуспешной.
	Fail(ctx context.Context, id, lastError string) error
	// List возвращает задачи, опционально по статусу, от новых к старым.
	List(ctx context.Context, status *string, limit int) ([]model.Task, error)
}

// taskRepo — реализация TaskRepository.
type taskRepo struct {
	db DBTX
}

// NewTaskRepository создаёт репозиторий очереди задач.
func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepo{db: db}
}

const taskColumns = `id, kind, payload, status, attempts, last_error, run_after, created_at, updated_at`

func scanTask(row pgx.Row) (*model.Task, error) {
	t := &model.Task{}
	var id uuid.UUID
	var kind string
	var payload []byte
	if err := row.Scan(&id, &kind, &payload, &t.Status, &t.Attempts, &t.LastError,
		&t.RunAfter, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.String()
	t.Kind = model.TaskKind(kind)
	t.Payload = payload
	return t, nil
}

func (r *taskRepo) Enqueue(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.RunAfter.IsZero() {
		task.RunAfter = time.Now()
	}
	payload := []byte(task.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query := `
		INSERT INTO mcpsync_tasks (id, kind, payload, status, run_after)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING status, attempts, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, task.ID, string(task.Kind), payload, task.RunAfter).
		Scan(&task.Status, &task.Attempts, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка постановки задачи %s в очередь: %w", task.Kind, err)
	}
	return nil
}

func (r *taskRepo) ClaimNext(ctx context.Context) (*model.Task, error) {
	query := `
		UPDATE mcpsync_tasks
		SET status = 'running', attempts = attempts + 1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM mcpsync_tasks
			WHERE status = 'pending' AND run_after <= NOW()
			ORDER BY run_after, created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + taskColumns

	t, err := scanTask(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения задачи из очереди: %w", err)
	}
	return t, nil
}

func (r *taskRepo) Complete(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, model.TaskStatusDone, nil, nil)
}

func (r *taskRepo) Retry(ctx context.Context, id string, runAfter time.Time, lastError string) error {
	return r.setStatus(ctx, id, model.TaskStatusPending, &runAfter, &lastError)
}

func (r *taskRepo) Fail(ctx context.Context, id, lastError string) error {
	return r.setStatus(ctx, id, model.TaskStatusFailed, nil, &lastError)
}

func (r *taskRepo) setStatus(ctx context.Context, id, status string, runAfter *time.Time, lastError *string) error {
	query := `
		UPDATE mcpsync_tasks
		SET status = $2,
		    run_after = COALESCE($3, run_after),
		    last_error = COALESCE($4, last_error),
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status, runAfter, lastError)
	if err != nil {
		return fmt.Errorf("ошибка обновления задачи %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepo) List(ctx context.Context, status *string, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + taskColumns + ` FROM mcpsync_tasks
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка задач: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования задачи: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
