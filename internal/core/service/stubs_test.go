package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// memTaskRepo keeps tasks in memory, scoped by user like the real stores.
type memTaskRepo struct {
	tasks  map[string]*domain.Task
	nextID int
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (r *memTaskRepo) Create(_ context.Context, t *domain.Task) error {
	for _, existing := range r.tasks {
		if existing.UserID == t.UserID && existing.Name == t.Name {
			return domain.ErrDuplicateTaskName
		}
	}
	r.nextID++
	t.ID = strconv.Itoa(r.nextID)
	r.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r *memTaskRepo) FindByID(_ context.Context, userID, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *memTaskRepo) FindByName(_ context.Context, userID, name string) (*domain.Task, error) {
	for _, t := range r.tasks {
		if t.UserID == userID && t.Name == name {
			return cloneTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *memTaskRepo) FindByDisplayOrder(_ context.Context, userID string, order int) (*domain.Task, error) {
	for _, t := range r.tasks {
		if t.UserID == userID && t.DisplayOrder == order {
			return cloneTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *memTaskRepo) ListByUser(_ context.Context, userID string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, cloneTask(t))
		}
	}
	domain.SortByDisplayOrder(out)
	return out, nil
}

func (r *memTaskRepo) ListByIDs(ctx context.Context, userID string, ids []string) ([]*domain.Task, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	all, _ := r.ListByUser(ctx, userID)
	var out []*domain.Task
	for _, t := range all {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) MaxDisplayOrder(_ context.Context, userID string) (int, error) {
	maxOrder := 0
	for _, t := range r.tasks {
		if t.UserID == userID && t.DisplayOrder > maxOrder {
			maxOrder = t.DisplayOrder
		}
	}
	return maxOrder, nil
}

func (r *memTaskRepo) Update(_ context.Context, t *domain.Task) error {
	cur, ok := r.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return domain.ErrTaskNotFound
	}
	c := cloneTask(t)
	c.DisplayOrder = cur.DisplayOrder
	c.CreatedAt = cur.CreatedAt
	r.tasks[t.ID] = c
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, userID, id string) error {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) SetDisplayOrders(_ context.Context, userID string, orders map[string]int) error {
	for id, order := range orders {
		t, ok := r.tasks[id]
		if !ok || t.UserID != userID {
			return domain.ErrTaskNotFound
		}
		t.DisplayOrder = order
	}
	return nil
}

// orders returns name → display order for the user's tasks.
func (r *memTaskRepo) orders(userID string) map[string]int {
	out := make(map[string]int)
	for _, t := range r.tasks {
		if t.UserID == userID {
			out[t.Name] = t.DisplayOrder
		}
	}
	return out
}

type memMessageRepo struct {
	messages []*domain.Message
	nextID   int
	failOn   domain.MessageRole
}

func (r *memMessageRepo) Append(_ context.Context, m *domain.Message) error {
	if r.failOn != "" && m.Role == r.failOn {
		return errors.New("store unavailable")
	}
	r.nextID++
	m.ID = strconv.Itoa(r.nextID)
	m.CreatedAt = time.Now().UTC()
	c := *m
	r.messages = append(r.messages, &c)
	return nil
}

func (r *memMessageRepo) ListByUser(_ context.Context, userID string) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.UserID == userID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memMessageRepo) Delete(_ context.Context, userID, id string) error {
	for i, m := range r.messages {
		if m.ID == id && m.UserID == userID {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return domain.ErrMessageNotFound
}

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}
