package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-backend/internal/models"

	"github.com/lib/pq"
)

// TaskRepository handles CRUD for tasks and their tag sets.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	var (
		t            models.Task
		due, remind  sql.NullTime
		categoryID   sql.NullInt64
		categoryName sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
		&due, &remind, &t.Priority, &t.Status, &categoryID, &categoryName, &t.Position)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	if remind.Valid {
		t.ReminderDate = &remind.Time
	}
	if categoryID.Valid {
		id := int(categoryID.Int64)
		t.CategoryID = &id
	}
	if categoryName.Valid {
		t.CategoryName = &categoryName.String
	}
	return &t, nil
}

// List returns userID's tasks narrowed by f, with tags and subtasks loaded.
func (r *TaskRepository) List(ctx context.Context, userID int, f TaskFilter, now time.Time) ([]models.Task, error) {
	query, args := f.listQuery(userID, now)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	if err := r.attachRelations(ctx, r.db, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (*models.Task, error) {
	return r.get(ctx, r.db, id)
}

func (r *TaskRepository) get(ctx context.Context, q querier, id int) (*models.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, taskSelect+"\nWHERE t.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	tasks := []models.Task{*t}
	if err := r.attachRelations(ctx, q, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// Create inserts t and its tag set in one transaction and reloads it.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task, tagIDs []int) (*models.Task, error) {
	var created *models.Task
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tasks (user_id, title, description, completed, due_date, reminder_date, priority, status, category_id, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id`,
			t.UserID, t.Title, t.Description, t.Completed, t.DueDate, t.ReminderDate,
			t.Priority, t.Status, t.CategoryID, t.Position,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("create task: %w", translate(err))
		}
		if err := replaceTags(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		created, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update writes every mutable column of t. A nil tagIDs leaves the tag set
// untouched; a non-nil one replaces it.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task, tagIDs []int) (*models.Task, error) {
	var updated *models.Task
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tasks
			 SET title = $1, description = $2, completed = $3, due_date = $4, reminder_date = $5,
			     priority = $6, status = $7, category_id = $8, position = $9, updated_at = NOW()
			 WHERE id = $10`,
			t.Title, t.Description, t.Completed, t.DueDate, t.ReminderDate,
			t.Priority, t.Status, t.CategoryID, t.Position, t.ID,
		)
		if err != nil {
			return fmt.Errorf("update task %d: %w", t.ID, translate(err))
		}
		if err := affectedOrNotFound(res, ErrTaskNotFound); err != nil {
			return err
		}
		if tagIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, t.ID); err != nil {
				return fmt.Errorf("clear task tags: %w", err)
			}
			if err := replaceTags(ctx, tx, t.ID, tagIDs); err != nil {
				return err
			}
		}
		updated, err = r.get(ctx, tx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task; its subtasks and tag links cascade.
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return affectedOrNotFound(res, ErrTaskNotFound)
}

func (r *TaskRepository) AddTag(ctx context.Context, taskID, tagID int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			taskID, tagID); err != nil {
			return fmt.Errorf("add tag %d to task %d: %w", tagID, taskID, translate(err))
		}
		return touch(ctx, tx, taskID)
	})
}

func (r *TaskRepository) RemoveTag(ctx context.Context, taskID, tagID int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM task_tags WHERE task_id = $1 AND tag_id = $2`,
			taskID, tagID); err != nil {
			return fmt.Errorf("remove tag %d from task %d: %w", tagID, taskID, err)
		}
		return touch(ctx, tx, taskID)
	})
}

func (r *TaskRepository) UpdatePosition(ctx context.Context, taskID, position int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET position = $1, updated_at = NOW() WHERE id = $2`, position, taskID)
	if err != nil {
		return fmt.Errorf("update task %d position: %w", taskID, err)
	}
	return affectedOrNotFound(res, ErrTaskNotFound)
}

// Stats aggregates userID's tasks. Active is derived so that
// Completed + Active always equals Total.
func (r *TaskRepository) Stats(ctx context.Context, userID int, now time.Time) (models.TaskStats, error) {
	s := models.NewTaskStats()
	var low, medium, high, todo, inProgress, done int
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE completed),
			COUNT(*) FILTER (WHERE due_date IS NOT NULL AND due_date < $2 AND NOT completed),
			COUNT(*) FILTER (WHERE priority = 'low'),
			COUNT(*) FILTER (WHERE priority = 'medium'),
			COUNT(*) FILTER (WHERE priority = 'high'),
			COUNT(*) FILTER (WHERE status = 'todo'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'done')
		 FROM tasks
		 WHERE user_id = $1`, userID, now,
	).Scan(&s.Total, &s.Completed, &s.Overdue, &low, &medium, &high, &todo, &inProgress, &done)
	if err != nil {
		return s, fmt.Errorf("task stats for user %d: %w", userID, err)
	}
	s.Active = s.Total - s.Completed
	s.ByPriority[models.PriorityLow] = low
	s.ByPriority[models.PriorityMedium] = medium
	s.ByPriority[models.PriorityHigh] = high
	s.ByStatus[models.StatusTodo] = todo
	s.ByStatus[models.StatusInProgress] = inProgress
	s.ByStatus[models.StatusDone] = done
	return s, nil
}

// CountOverdue counts userID's open tasks whose due date is before now.
func (r *TaskRepository) CountOverdue(ctx context.Context, userID int, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks
		 WHERE user_id = $1 AND due_date IS NOT NULL AND due_date < $2 AND NOT completed`,
		userID, now,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overdue tasks for user %d: %w", userID, err)
	}
	return n, nil
}

func touch(ctx context.Context, q querier, taskID int) error {
	res, err := q.ExecContext(ctx, `UPDATE tasks SET updated_at = NOW() WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("touch task %d: %w", taskID, err)
	}
	return affectedOrNotFound(res, ErrTaskNotFound)
}

func replaceTags(ctx context.Context, q querier, taskID int, tagIDs []int) error {
	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO task_tags (task_id, tag_id)
		 SELECT $1, unnest($2::int[])
		 ON CONFLICT DO NOTHING`, taskID, ids)
	if err != nil {
		return fmt.Errorf("set tags on task %d: %w", taskID, translate(err))
	}
	return nil
}

// attachRelations loads tags and subtasks for tasks with one query each.
func (r *TaskRepository) attachRelations(ctx context.Context, q querier, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make(pq.Int64Array, len(tasks))
	index := make(map[int]int, len(tasks))
	for i, t := range tasks {
		ids[i] = int64(t.ID)
		index[t.ID] = i
		tasks[i].Tags = []models.Tag{}
		tasks[i].SubTasks = []models.SubTask{}
	}

	tagRows, err := q.QueryContext(ctx,
		`SELECT tt.task_id, g.id, g.name, g.color, g.user_id
		 FROM task_tags tt
		 JOIN tags g ON g.id = tt.tag_id
		 WHERE tt.task_id = ANY($1)
		 ORDER BY g.name, g.id`, ids)
	if err != nil {
		return fmt.Errorf("load task tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var (
			taskID int
			tag    models.Tag
			owner  sql.NullInt64
		)
		if err := tagRows.Scan(&taskID, &tag.ID, &tag.Name, &tag.Color, &owner); err != nil {
			return fmt.Errorf("scan task tag: %w", err)
		}
		if owner.Valid {
			uid := int(owner.Int64)
			tag.UserID = &uid
		}
		i := index[taskID]
		tasks[i].Tags = append(tasks[i].Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("iterate task tags: %w", err)
	}

	subRows, err := q.QueryContext(ctx,
		`SELECT s.id, s.task_id, s.title, s.completed, s.position, t.user_id
		 FROM subtasks s
		 JOIN tasks t ON t.id = s.task_id
		 WHERE s.task_id = ANY($1)
		 ORDER BY s.position, s.id`, ids)
	if err != nil {
		return fmt.Errorf("load subtasks: %w", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		s, err := scanSubTask(subRows)
		if err != nil {
			return fmt.Errorf("scan subtask: %w", err)
		}
		i := index[s.TaskID]
		tasks[i].SubTasks = append(tasks[i].SubTasks, *s)
	}
	return subRows.Err()
}
