package ports

import (
	"context"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// TaskInput carries the editable task fields as typed into a form. Dates
// are dd/mm/yyyy strings; CompletionDate may be empty.
type TaskInput struct {
	Name           string
	Cost           float64
	DueDate        string
	CompletionDate string
	Description    string
	Status         string
	Priority       string
	AssignedTo     string
	CreatedBy      string
	Notes          string
	Category       string
}

// TaskService defines the task list use cases.
type TaskService interface {
	List(ctx context.Context, userID string) ([]*domain.Task, error)
	Get(ctx context.Context, userID, id string) (*domain.Task, error)
	// Create and Update return *domain.ValidationError for bad dates or a
	// duplicate name.
	Create(ctx context.Context, userID string, in TaskInput) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, in TaskInput) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
	// Move swaps the task with its neighbour and reports whether anything
	// changed. domain.ErrAlreadyFirst and domain.ErrAlreadyLast signal a
	// no-op at either end of the list.
	Move(ctx context.Context, userID, id string, dir domain.MoveDirection) (bool, error)
}
