package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/danivela/ai-todo-be/internal/apperr"
	"github.com/danivela/ai-todo-be/internal/models"
)

// TaskServiceProvider defines the interface for task services. Every
// operation is scoped to the owning user; a task is never visible to or
// mutable by anyone else.
type TaskServiceProvider interface {
	Create(ctx context.Context, owner int64, description string) (models.Task, error)
	List(ctx context.Context, owner int64) ([]models.Task, error)
	Update(ctx context.Context, id, owner int64, patch models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, id, owner int64) error
}

// TaskService provides business logic for task management.
type TaskService struct {
	db *sql.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{db: db}
}

// Create inserts a new task owned by the given user, starting out pending.
func (s *TaskService) Create(ctx context.Context, owner int64, description string) (models.Task, error) {
	if strings.TrimSpace(description) == "" {
		return models.Task{}, apperr.Validation("description", "must not be empty")
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks(description, status, user_id) VALUES(?, ?, ?)",
		description, string(models.StatusPending), owner)
	if err != nil {
		return models.Task{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, err
	}
	return s.get(ctx, id, owner)
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, owner int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, status, user_id, created_at FROM tasks WHERE user_id = ? ORDER BY id DESC",
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Description, &t.Status, &t.UserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update applies the present patch fields to the owner's task. The ownership
// filter is part of the UPDATE statement itself, so the check and the
// mutation are a single step; a missing or foreign id is a not-found.
func (s *TaskService) Update(ctx context.Context, id, owner int64, patch models.TaskPatch) (models.Task, error) {
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return models.Task{}, apperr.Validation("description", "must not be empty")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.Task{}, apperr.Validation("status", "must be one of pending, in-progress, done")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks
		 SET description = COALESCE(?, description),
		     status = COALESCE(?, status)
		 WHERE id = ? AND user_id = ?`,
		patch.Description, statusArg(patch.Status), id, owner)
	if err != nil {
		return models.Task{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if n == 0 {
		return models.Task{}, apperr.ErrNotFound
	}
	return s.get(ctx, id, owner)
}

// Delete removes the owner's task. A missing or foreign id is a not-found.
func (s *TaskService) Delete(ctx context.Context, id, owner int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND user_id = ?", id, owner)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *TaskService) get(ctx context.Context, id, owner int64) (models.Task, error) {
	var t models.Task
	row := s.db.QueryRowContext(ctx,
		"SELECT id, description, status, user_id, created_at FROM tasks WHERE id = ? AND user_id = ?",
		id, owner)
	err := row.Scan(&t.ID, &t.Description, &t.Status, &t.UserID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, apperr.ErrNotFound
		}
		return models.Task{}, err
	}
	return t, nil
}

func statusArg(s *models.Status) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}
