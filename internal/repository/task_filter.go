package repository

import (
	"fmt"
	"strings"
	"time"
)

// TaskFilter narrows a task listing. Zero values mean "no filter"; every set
// field is ANDed with the others.
type TaskFilter struct {
	CategoryID *int
	Priority   string
	Status     string
	Completed  *bool
	// DueDate matches on the UTC calendar date of due_date.
	DueDate *time.Time
	Overdue *bool
	TagID   *int
	Search  string
	Limit   int
}

const taskSelect = `SELECT t.id, t.user_id, t.title, t.description, t.completed, t.created_at, t.updated_at,
       t.due_date, t.reminder_date, t.priority, t.status, t.category_id, c.name, t.position
FROM tasks t
LEFT JOIN categories c ON c.id = t.category_id`

const overduePredicate = `(t.due_date IS NOT NULL AND t.due_date < %s AND NOT t.completed)`

// listQuery renders the filtered, ordered listing of userID's tasks.
func (f TaskFilter) listQuery(userID int, now time.Time) (string, []interface{}) {
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds := []string{"t.user_id = " + arg(userID)}
	if f.CategoryID != nil {
		conds = append(conds, "t.category_id = "+arg(*f.CategoryID))
	}
	if f.Priority != "" {
		conds = append(conds, "t.priority = "+arg(f.Priority))
	}
	if f.Status != "" {
		conds = append(conds, "t.status = "+arg(f.Status))
	}
	if f.Completed != nil {
		conds = append(conds, "t.completed = "+arg(*f.Completed))
	}
	if f.DueDate != nil {
		conds = append(conds, "(t.due_date AT TIME ZONE 'UTC')::date = "+arg(f.DueDate.Format("2006-01-02"))+"::date")
	}
	if f.Overdue != nil {
		pred := fmt.Sprintf(overduePredicate, arg(now))
		if !*f.Overdue {
			pred = "NOT " + pred
		}
		conds = append(conds, pred)
	}
	if f.TagID != nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.tag_id = "+arg(*f.TagID)+")")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		conds = append(conds, "(t.title ILIKE "+p+" OR t.description ILIKE "+p+")")
	}

	query := taskSelect + "\nWHERE " + strings.Join(conds, " AND ") + "\nORDER BY t.position ASC, t.created_at DESC"
	if f.Limit > 0 {
		query += "\nLIMIT " + arg(f.Limit)
	}
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
