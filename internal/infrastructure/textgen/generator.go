// Package textgen adapts the Gemini API to ports.TextGenerator.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

var errEmptyResponse = errors.New("empty response from model")

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Generator sends single-turn prompts to a Gemini model.
type Generator struct {
	generate generateFunc
	model    string
	timeout  time.Duration
}

func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrGeneratorUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return newGenerator(client.Models.GenerateContent, cfg), nil
}

func newGenerator(fn generateFunc, cfg Config) *Generator {
	g := &Generator{generate: fn, model: cfg.Model, timeout: cfg.Timeout}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	return g
}

// Generate returns the model's text for prompt. No retries are made.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.generate(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// Unavailable is used when no API key is configured. Every call fails with
// domain.ErrGeneratorUnavailable.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", domain.ErrGeneratorUnavailable
}
