package ports

import (
	"context"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// ReportService produces a prose report over a selection of tasks.
type ReportService interface {
	// Generate returns domain.ErrNoTasksSelected when ids select nothing the
	// user owns and domain.ErrGenerationFailed when the service call fails.
	Generate(ctx context.Context, userID string, ids []string) (string, error)
}

// ChatExchange is the pair of messages stored for one chat turn.
type ChatExchange struct {
	Question *domain.Message
	Answer   *domain.Message
	// Failed is true when Answer holds the fallback reply.
	Failed bool
}

// ChatService defines the chat transcript use cases.
type ChatService interface {
	Send(ctx context.Context, userID, text string) (*ChatExchange, error)
	History(ctx context.Context, userID string) ([]*domain.Message, error)
	DeleteMessage(ctx context.Context, userID, id string) error
}
