package ports

import (
	"context"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	// Authenticate checks the password and returns the user for a web session.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	// Login authenticates and returns a signed API token.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
