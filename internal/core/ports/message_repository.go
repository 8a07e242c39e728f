package ports

import (
	"context"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// MessageRepository defines persistence for the append-only chat log.
type MessageRepository interface {
	// Append stores m and sets m.ID and m.CreatedAt.
	Append(ctx context.Context, m *domain.Message) error
	// ListByUser returns the transcript oldest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Message, error)
	Delete(ctx context.Context, userID, id string) error
}
