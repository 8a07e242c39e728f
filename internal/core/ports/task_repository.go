package ports

import (
	"context"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// TaskRepository defines persistence for tasks. Every method is scoped by
// user ID; a task owned by someone else behaves as if it did not exist.
type TaskRepository interface {
	// Create inserts t and sets t.ID. Returns domain.ErrDuplicateTaskName
	// when the user already has a task with the same name.
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, userID, id string) (*domain.Task, error)
	// FindByName returns domain.ErrTaskNotFound when no task has that exact name.
	FindByName(ctx context.Context, userID, name string) (*domain.Task, error)
	// FindByDisplayOrder returns domain.ErrTaskNotFound when no task holds the position.
	FindByDisplayOrder(ctx context.Context, userID string, order int) (*domain.Task, error)
	// ListByUser returns the user's tasks sorted by display order.
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	// ListByIDs returns the subset of ids owned by the user, sorted by display order.
	ListByIDs(ctx context.Context, userID string, ids []string) ([]*domain.Task, error)
	// MaxDisplayOrder returns 0 when the user has no tasks.
	MaxDisplayOrder(ctx context.Context, userID string) (int, error)
	// Update writes every field except DisplayOrder, UserID and CreatedAt.
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
	// SetDisplayOrders applies all order changes atomically where the
	// backend supports it.
	SetDisplayOrders(ctx context.Context, userID string, orders map[string]int) error
}
