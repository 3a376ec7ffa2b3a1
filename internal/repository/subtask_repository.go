package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-backend/internal/models"
)

type SubTaskRepository struct {
	db *sql.DB
}

func NewSubTaskRepository(db *sql.DB) *SubTaskRepository {
	return &SubTaskRepository{db: db}
}

const subTaskSelect = `SELECT s.id, s.task_id, s.title, s.completed, s.position, t.user_id
FROM subtasks s
JOIN tasks t ON t.id = s.task_id`

func scanSubTask(row interface{ Scan(...interface{}) error }) (*models.SubTask, error) {
	var s models.SubTask
	if err := row.Scan(&s.ID, &s.TaskID, &s.Title, &s.Completed, &s.Position, &s.OwnerID); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns the subtasks of userID's tasks, optionally narrowed to one task.
func (r *SubTaskRepository) List(ctx context.Context, userID int, taskID *int) ([]models.SubTask, error) {
	query := subTaskSelect + "\nWHERE t.user_id = $1"
	args := []interface{}{userID}
	if taskID != nil {
		query += " AND s.task_id = $2"
		args = append(args, *taskID)
	}
	query += "\nORDER BY s.task_id, s.position, s.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	subtasks := []models.SubTask{}
	for rows.Next() {
		s, err := scanSubTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		subtasks = append(subtasks, *s)
	}
	return subtasks, rows.Err()
}

// Get loads a subtask together with the owner of its parent task.
func (r *SubTaskRepository) Get(ctx context.Context, id int) (*models.SubTask, error) {
	s, err := scanSubTask(r.db.QueryRowContext(ctx, subTaskSelect+"\nWHERE s.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subtask %d: %w", id, err)
	}
	return s, nil
}

func (r *SubTaskRepository) Create(ctx context.Context, s *models.SubTask) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO subtasks (task_id, title, completed, position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		s.TaskID, s.Title, s.Completed, s.Position,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("create subtask: %w", translate(err))
	}
	return nil
}

func (r *SubTaskRepository) Update(ctx context.Context, s *models.SubTask) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subtasks SET task_id = $1, title = $2, completed = $3, position = $4 WHERE id = $5`,
		s.TaskID, s.Title, s.Completed, s.Position, s.ID)
	if err != nil {
		return fmt.Errorf("update subtask %d: %w", s.ID, translate(err))
	}
	return affectedOrNotFound(res, ErrSubTaskNotFound)
}

func (r *SubTaskRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subtask %d: %w", id, err)
	}
	return affectedOrNotFound(res, ErrSubTaskNotFound)
}
