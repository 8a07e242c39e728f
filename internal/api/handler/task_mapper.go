package handler

import (
	"strconv"
	"strings"

	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

// --- Request → Service input ---

func toTaskInput(req taskRequest) ports.TaskInput {
	return ports.TaskInput{
		Name:           req.Name,
		Cost:           req.Cost,
		DueDate:        req.DueDate,
		CompletionDate: req.CompletionDate,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      req.CreatedBy,
		Notes:          req.Notes,
		Category:       req.Category,
	}
}

// input converts the form into a service input. A cost that is not a number
// is reported on the "cost" field; "," is accepted as decimal separator.
func (f taskForm) input() (ports.TaskInput, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(f.Cost), ",", ".")
	cost, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ports.TaskInput{}, domain.NewValidationError("cost", "Cost must be a number.")
	}
	return ports.TaskInput{
		Name:           f.Name,
		Cost:           cost,
		DueDate:        f.DueDate,
		CompletionDate: f.CompletionDate,
		Description:    f.Description,
		Status:         f.Status,
		Priority:       f.Priority,
		AssignedTo:     f.AssignedTo,
		CreatedBy:      f.CreatedBy,
		Notes:          f.Notes,
		Category:       f.Category,
	}, nil
}

// --- Domain → Response ---

func formFromTask(t *domain.Task) taskForm {
	return taskForm{
		ID:             t.ID,
		Name:           t.Name,
		Cost:           strconv.FormatFloat(t.Cost, 'f', 2, 64),
		DueDate:        domain.FormatDate(t.DueDate),
		CompletionDate: formatOptionalDate(t),
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		AssignedTo:     t.AssignedTo,
		CreatedBy:      t.CreatedBy,
		Notes:          t.Notes,
		Category:       t.Category,
	}
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		Name:           t.Name,
		Cost:           t.Cost,
		DueDate:        domain.FormatDate(t.DueDate),
		CompletionDate: formatOptionalDate(t),
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		AssignedTo:     t.AssignedTo,
		CreatedBy:      t.CreatedBy,
		Notes:          t.Notes,
		Category:       t.Category,
		DisplayOrder:   t.DisplayOrder,
		CreatedAt:      t.CreatedAt,
	}
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func formatOptionalDate(t *domain.Task) string {
	if t.CompletionDate == nil {
		return ""
	}
	return domain.FormatDate(*t.CompletionDate)
}
