package ports

import "context"

// TextGenerator sends a prompt to an external text-generation service and
// returns its raw textual answer.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
