package domain

import (
	"errors"
	"time"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry of a user's chat transcript. Messages are never
// edited once stored.
type Message struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}
