package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

const taskColumns = `id, user_id, name, cost, due_date, description, status, priority,
	assigned_to, created_by, created_at, completion_date, notes, category, display_order`

const isoDate = "2006-01-02"

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := newID()
	_, err := r.db.exec(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, t.UserID, t.Name, t.Cost, t.DueDate.Format(isoDate), t.Description,
		string(t.Status), string(t.Priority), t.AssignedTo, t.CreatedBy,
		toUnixNano(t.CreatedAt), nullableDate(t.CompletionDate), t.Notes, t.Category, t.DisplayOrder,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTaskName
		}
		return fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	return r.findOne(ctx, "SELECT "+taskColumns+" FROM tasks WHERE user_id = ? AND id = ?", userID, id)
}

func (r *TaskRepository) FindByName(ctx context.Context, userID, name string) (*domain.Task, error) {
	return r.findOne(ctx, "SELECT "+taskColumns+" FROM tasks WHERE user_id = ? AND name = ?", userID, name)
}

func (r *TaskRepository) FindByDisplayOrder(ctx context.Context, userID string, order int) (*domain.Task, error) {
	return r.findOne(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? AND display_order = ? ORDER BY created_at, id LIMIT 1",
		userID, order)
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.list(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY display_order, created_at, id",
		userID)
}

func (r *TaskRepository) ListByIDs(ctx context.Context, userID string, ids []string) ([]*domain.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	return r.list(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? AND id IN ("+placeholders(len(ids))+
			") ORDER BY display_order, created_at, id",
		args...)
}

func (r *TaskRepository) MaxDisplayOrder(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var maxOrder sql.NullInt64
	if err := r.db.queryRow(ctx, "SELECT MAX(display_order) FROM tasks WHERE user_id = ?", userID).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("max display order: %w", err)
	}
	return int(maxOrder.Int64), nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.exec(ctx,
		`UPDATE tasks SET name = ?, cost = ?, due_date = ?, description = ?, status = ?, priority = ?,
			assigned_to = ?, created_by = ?, completion_date = ?, notes = ?, category = ?
		WHERE user_id = ? AND id = ?`,
		t.Name, t.Cost, t.DueDate.Format(isoDate), t.Description, string(t.Status), string(t.Priority),
		t.AssignedTo, t.CreatedBy, nullableDate(t.CompletionDate), t.Notes, t.Category,
		t.UserID, t.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTaskName
		}
		return fmt.Errorf("update task: %w", err)
	}
	// MySQL reports 0 affected rows when nothing changed, so only a missing
	// row is treated as not found.
	if n, err := rowsAffected(res); err == nil && n == 0 {
		if _, err := r.FindByID(ctx, t.UserID, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, "DELETE FROM tasks WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// SetDisplayOrders applies every change inside one transaction.
func (r *TaskRepository) SetDisplayOrders(ctx context.Context, userID string, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.db.rebind("UPDATE tasks SET display_order = ? WHERE user_id = ? AND id = ?"))
	if err != nil {
		return fmt.Errorf("prepare order update: %w", err)
	}
	defer stmt.Close()

	for id, order := range orders {
		if _, err := stmt.ExecContext(ctx, order, userID, id); err != nil {
			return fmt.Errorf("set display order of %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order update: %w", err)
	}
	return nil
}

func (r *TaskRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	t, err := scanTask(r.db.queryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*domain.Task, error) {
	var (
		t          domain.Task
		due        string
		status     string
		priority   string
		createdAt  int64
		completion sql.NullString
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Cost, &due, &t.Description, &status, &priority,
		&t.AssignedTo, &t.CreatedBy, &createdAt, &completion, &t.Notes, &t.Category, &t.DisplayOrder)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.CreatedAt = fromUnixNano(createdAt)
	if t.DueDate, err = time.Parse(isoDate, due); err != nil {
		return nil, fmt.Errorf("due date %q: %w", due, err)
	}
	if completion.Valid && completion.String != "" {
		d, err := time.Parse(isoDate, completion.String)
		if err != nil {
			return nil, fmt.Errorf("completion date %q: %w", completion.String, err)
		}
		t.CompletionDate = &d
	}
	return &t, nil
}

func nullableDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(isoDate), Valid: true}
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
