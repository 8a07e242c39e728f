package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/api/metrics"
	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

type ReportService struct {
	tasks     ports.TaskRepository
	generator ports.TextGenerator
	currency  string
	logger    zerolog.Logger
}

func NewReportService(tasks ports.TaskRepository, generator ports.TextGenerator, currency string, logger zerolog.Logger) *ReportService {
	return &ReportService{tasks: tasks, generator: generator, currency: currency, logger: logger}
}

func (s *ReportService) Generate(ctx context.Context, userID string, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", domain.ErrNoTasksSelected
	}

	tasks, err := s.tasks.ListByIDs(ctx, userID, ids)
	if err != nil {
		return "", fmt.Errorf("load report tasks: %w", err)
	}
	if len(tasks) == 0 {
		return "", domain.ErrNoTasksSelected
	}
	domain.SortByDisplayOrder(tasks)

	prompt := BuildReportPrompt(tasks, s.currency)

	start := time.Now()
	report, err := s.generator.Generate(ctx, prompt)
	metrics.GenerationDuration.WithLabelValues("report").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("report", "error").Inc()
		s.logger.Error().Err(err).Str("user_id", userID).Int("tasks", len(tasks)).Msg("report generation failed")
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	metrics.GenerationRequestsTotal.WithLabelValues("report", "ok").Inc()
	s.logger.Info().Str("user_id", userID).Int("tasks", len(tasks)).Msg("report generated")
	return report, nil
}
