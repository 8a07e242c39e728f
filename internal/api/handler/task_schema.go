package handler

import (
	"time"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Request / Response types ---

type taskRequest struct {
	Name           string  `json:"name"            validate:"required,max=200"`
	Cost           float64 `json:"cost"            validate:"gte=0"`
	DueDate        string  `json:"due_date"        validate:"required" example:"31/12/2026"`
	CompletionDate string  `json:"completion_date" example:"15/12/2026"`
	Description    string  `json:"description"`
	Status         string  `json:"status"          validate:"omitempty,oneof=pending in_progress completed"`
	Priority       string  `json:"priority"        validate:"omitempty,oneof=low medium high"`
	AssignedTo     string  `json:"assigned_to"`
	CreatedBy      string  `json:"created_by"`
	Notes          string  `json:"notes"`
	Category       string  `json:"category"`
}

// taskForm is the HTML form counterpart of taskRequest. Cost stays a string
// so a non-numeric value comes back as a field error instead of a bind error.
type taskForm struct {
	ID             string `form:"-"`
	Name           string `form:"name"            validate:"required,max=200"`
	Cost           string `form:"cost"            validate:"required"`
	DueDate        string `form:"due_date"        validate:"required"`
	CompletionDate string `form:"completion_date"`
	Description    string `form:"description"`
	Status         string `form:"status"          validate:"omitempty,oneof=pending in_progress completed"`
	Priority       string `form:"priority"        validate:"omitempty,oneof=low medium high"`
	AssignedTo     string `form:"assigned_to"`
	CreatedBy      string `form:"created_by"`
	Notes          string `form:"notes"`
	Category       string `form:"category"`
}

type taskResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Cost           float64   `json:"cost"`
	DueDate        string    `json:"due_date"`
	CompletionDate string    `json:"completion_date,omitempty"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status,omitempty"`
	Priority       string    `json:"priority,omitempty"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Category       string    `json:"category,omitempty"`
	DisplayOrder   int       `json:"display_order"`
	CreatedAt      time.Time `json:"created_at"`
}

type moveResponse struct {
	Moved  bool           `json:"moved"`
	Notice string         `json:"notice,omitempty"`
	Tasks  []taskResponse `json:"tasks"`
}

type reportRequest struct {
	TaskIDs []string `json:"task_ids" validate:"required,min=1"`
}

type reportResponse struct {
	Report string `json:"report"`
}

type messageRequest struct {
	Message string `json:"message" validate:"required"`
}

type chatResponse struct {
	Question *domain.Message `json:"question"`
	Answer   *domain.Message `json:"answer"`
	Fallback bool            `json:"fallback"`
}
