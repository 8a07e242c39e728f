package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/api/metrics"
	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

const (
	msgDuplicateName = "Task name already exists."
	msgInvalidDate   = "Invalid date format. Use dd/mm/yyyy."
)

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, userID string) ([]*domain.Task, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, userID, id)
}

// Create validates the input, appends the task at the end of the user's list
// and persists it.
func (s *TaskService) Create(ctx context.Context, userID string, in ports.TaskInput) (*domain.Task, error) {
	task := &domain.Task{UserID: userID}
	verr := applyInput(task, in)

	if err := s.checkNameFree(ctx, userID, task.Name, "", verr); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	maxOrder, err := s.repo.MaxDisplayOrder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create task: max order: %w", err)
	}
	task.DisplayOrder = domain.NextDisplayOrder(maxOrder)
	task.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, task); err != nil {
		if errors.Is(err, domain.ErrDuplicateTaskName) {
			return nil, domain.NewValidationError("name", msgDuplicateName)
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	metrics.TaskMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info().
		Str("user_id", userID).
		Str("task_id", task.ID).
		Int("display_order", task.DisplayOrder).
		Msg("task created")
	return task, nil
}

// Update rewrites the editable fields of a task. Its position is unchanged.
func (s *TaskService) Update(ctx context.Context, userID, id string, in ports.TaskInput) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	originalName := task.Name
	verr := applyInput(task, in)
	if task.Name != originalName {
		if err := s.checkNameFree(ctx, userID, task.Name, task.ID, verr); err != nil {
			return nil, err
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrDuplicateTaskName) {
			return nil, domain.NewValidationError("name", msgDuplicateName)
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	metrics.TaskMutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info().Str("user_id", userID).Str("task_id", id).Msg("task updated")
	return task, nil
}

// Delete removes the task and renumbers the survivors to 1..N.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	remaining, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete task: list remaining: %w", err)
	}
	changes := domain.PlanRenumber(remaining)
	if len(changes) > 0 {
		if err := s.repo.SetDisplayOrders(ctx, userID, changes); err != nil {
			return fmt.Errorf("delete task: renumber: %w", err)
		}
		metrics.TaskRenumberedTotal.Add(float64(len(changes)))
	}

	metrics.TaskMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info().
		Str("user_id", userID).
		Str("task_id", id).
		Int("renumbered", len(changes)).
		Msg("task deleted")
	return nil
}

// Move swaps the task with the one directly above or below it.
func (s *TaskService) Move(ctx context.Context, userID, id string, dir domain.MoveDirection) (bool, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return false, err
	}

	maxOrder, err := s.repo.MaxDisplayOrder(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("move task: max order: %w", err)
	}

	target, err := domain.SwapTarget(task.DisplayOrder, maxOrder, dir)
	if err != nil {
		metrics.TaskMoveNoopsTotal.WithLabelValues("boundary").Inc()
		return false, err
	}

	partner, err := s.repo.FindByDisplayOrder(ctx, userID, target)
	if errors.Is(err, domain.ErrTaskNotFound) {
		// A gap in the ordering; nothing sensible to swap with.
		metrics.TaskMoveNoopsTotal.WithLabelValues("missing_partner").Inc()
		s.logger.Warn().
			Str("user_id", userID).
			Str("task_id", id).
			Int("target_order", target).
			Msg("swap partner missing, move skipped")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("move task: find partner: %w", err)
	}

	if err := s.repo.SetDisplayOrders(ctx, userID, domain.PlanSwap(task, partner)); err != nil {
		return false, fmt.Errorf("move task: swap: %w", err)
	}

	metrics.TaskMutationsTotal.WithLabelValues("move_" + dir.String()).Inc()
	s.logger.Debug().
		Str("user_id", userID).
		Str("task_id", id).
		Str("direction", dir.String()).
		Int("from", task.DisplayOrder).
		Int("to", target).
		Msg("task moved")
	return true, nil
}

// checkNameFree records a duplicate-name error in verr when another task of
// the user already uses name. Only repository failures are returned.
func (s *TaskService) checkNameFree(ctx context.Context, userID, name, excludeID string, verr *domain.ValidationError) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	existing, err := s.repo.FindByName(ctx, userID, name)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check task name: %w", err)
	}
	if existing.ID != excludeID {
		verr.Add("name", msgDuplicateName)
	}
	return nil
}

// applyInput copies the form fields onto t, collecting field errors.
func applyInput(t *domain.Task, in ports.TaskInput) *domain.ValidationError {
	verr := &domain.ValidationError{}

	// Names are compared exactly as typed, surrounding spaces included.
	t.Name = in.Name
	if strings.TrimSpace(t.Name) == "" {
		verr.Add("name", "Task name is required.")
	}
	switch {
	case math.IsNaN(in.Cost) || math.IsInf(in.Cost, 0):
		verr.Add("cost", "Cost must be a number.")
	case in.Cost < 0:
		verr.Add("cost", "Cost must not be negative.")
	}
	t.Cost = in.Cost

	if strings.TrimSpace(in.DueDate) == "" {
		verr.Add("due_date", "Due date is required.")
	} else if due, err := domain.ParseDate(in.DueDate); err != nil {
		verr.Add("due_date", msgInvalidDate)
	} else {
		t.DueDate = due
	}

	t.CompletionDate = nil
	if strings.TrimSpace(in.CompletionDate) != "" {
		done, err := domain.ParseDate(in.CompletionDate)
		if err != nil {
			verr.Add("completion_date", msgInvalidDate)
		} else {
			t.CompletionDate = &done
		}
	}

	switch st := domain.TaskStatus(in.Status); st {
	case "", domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted:
		t.Status = st
	default:
		verr.Add("status", "Unknown status.")
	}
	switch pr := domain.TaskPriority(in.Priority); pr {
	case "", domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		t.Priority = pr
	default:
		verr.Add("priority", "Unknown priority.")
	}

	t.Description = strings.TrimSpace(in.Description)
	t.AssignedTo = strings.TrimSpace(in.AssignedTo)
	t.CreatedBy = strings.TrimSpace(in.CreatedBy)
	t.Notes = strings.TrimSpace(in.Notes)
	t.Category = strings.TrimSpace(in.Category)
	return verr
}
