package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrDuplicateTaskName = errors.New("task name already exists")
)

// TaskStatus is the optional progress label of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskPriority is the optional urgency label of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is a single entry of a user's ordered task list.
type Task struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Name           string       `json:"name"`
	Cost           float64      `json:"cost"`
	DueDate        time.Time    `json:"due_date"`
	Description    string       `json:"description,omitempty"`
	Status         TaskStatus   `json:"status,omitempty"`
	Priority       TaskPriority `json:"priority,omitempty"`
	AssignedTo     string       `json:"assigned_to,omitempty"`
	CreatedBy      string       `json:"created_by,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	CompletionDate *time.Time   `json:"completion_date,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	Category       string       `json:"category,omitempty"`
	DisplayOrder   int          `json:"display_order"`
}

// Label returns a human readable form of the status, or "" when unset.
func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Label returns a human readable form of the priority, or "" when unset.
func (p TaskPriority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// Age describes how long ago the task was created relative to now, e.g.
// "2 days, 3 hours and 5 minutes".
func (t *Task) Age(now time.Time) string {
	d := now.Sub(t.CreatedAt)
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	if days > 0 {
		return fmt.Sprintf("%d days, %d hours and %d minutes", days, hours, minutes)
	}
	return fmt.Sprintf("%d hours and %d minutes", hours, minutes)
}
