package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := newID()
	now := time.Now().UTC()
	_, err := r.db.exec(ctx,
		"INSERT INTO messages (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
		id, m.UserID, string(m.Role), m.Content, now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	return nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.query(ctx,
		"SELECT id, user_id, role, content, created_at FROM messages WHERE user_id = ? ORDER BY created_at, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Message, 0)
	for rows.Next() {
		var (
			m       domain.Message
			role    string
			created int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = domain.MessageRole(role)
		m.CreatedAt = fromUnixNano(created)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, "DELETE FROM messages WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}
