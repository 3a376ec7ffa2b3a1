package models

import (
	"encoding/json"
	"time"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

var (
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	Statuses   = []string{StatusTodo, StatusInProgress, StatusDone}
)

type Task struct {
	ID           int        `json:"id"`
	UserID       int        `json:"user"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DueDate      *time.Time `json:"due_date"`
	ReminderDate *time.Time `json:"reminder_date"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	CategoryID   *int       `json:"category"`
	CategoryName *string    `json:"category_name"`
	Tags         []Tag      `json:"tags"`
	SubTasks     []SubTask  `json:"subtasks"`
	Position     int        `json:"position"`
}

// IsOverdue is true when the task has a due date before now and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now)
}

// MarshalJSON adds the derived is_overdue field, evaluated at encoding time.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	out := struct {
		plain
		IsOverdue bool `json:"is_overdue"`
	}{
		plain:     plain(t),
		IsOverdue: t.IsOverdue(time.Now()),
	}
	if out.Tags == nil {
		out.Tags = []Tag{}
	}
	if out.SubTasks == nil {
		out.SubTasks = []SubTask{}
	}
	return json.Marshal(out)
}

type SubTask struct {
	ID        int    `json:"id"`
	TaskID    int    `json:"task"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
	// OwnerID is the owner of the parent task.
	OwnerID int `json:"-"`
}

type TaskStats struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Active     int            `json:"active"`
	Overdue    int            `json:"overdue"`
	ByPriority map[string]int `json:"by_priority"`
	ByStatus   map[string]int `json:"by_status"`
}

// NewTaskStats returns stats with every priority and status bucket present.
func NewTaskStats() TaskStats {
	s := TaskStats{
		ByPriority: make(map[string]int, len(Priorities)),
		ByStatus:   make(map[string]int, len(Statuses)),
	}
	for _, p := range Priorities {
		s.ByPriority[p] = 0
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	return s
}
