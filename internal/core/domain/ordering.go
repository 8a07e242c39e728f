package domain

import (
	"errors"
	"sort"
)

var (
	ErrAlreadyFirst = errors.New("task is already at the top")
	ErrAlreadyLast  = errors.New("task is already at the bottom")
)

// MoveDirection is the step applied to a task's display order by a reorder.
type MoveDirection int

const (
	MoveUp   MoveDirection = -1
	MoveDown MoveDirection = 1
)

func (d MoveDirection) String() string {
	if d == MoveUp {
		return "up"
	}
	return "down"
}

// NextDisplayOrder returns the position for a newly added task given the
// user's current maximum order (0 when the user has no tasks).
func NextDisplayOrder(maxOrder int) int {
	if maxOrder < 1 {
		return 1
	}
	return maxOrder + 1
}

// SortByDisplayOrder sorts tasks in place by display order, falling back to
// creation time and then id so the result is deterministic on duplicates.
func SortByDisplayOrder(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// PlanRenumber returns the display order updates that turn tasks into the
// dense sequence 1..N while keeping their relative order. Tasks already at
// the right position are left out of the result.
func PlanRenumber(tasks []*Task) map[string]int {
	sorted := make([]*Task, len(tasks))
	copy(sorted, tasks)
	SortByDisplayOrder(sorted)

	changes := make(map[string]int)
	for i, t := range sorted {
		if want := i + 1; t.DisplayOrder != want {
			changes[t.ID] = want
		}
	}
	return changes
}

// SwapTarget returns the display order of the task a move should swap with.
// ErrAlreadyFirst and ErrAlreadyLast are notices, not failures: the move is
// a no-op.
func SwapTarget(current, maxOrder int, dir MoveDirection) (int, error) {
	switch dir {
	case MoveUp:
		if current <= 1 {
			return 0, ErrAlreadyFirst
		}
	case MoveDown:
		if current >= maxOrder {
			return 0, ErrAlreadyLast
		}
	}
	return current + int(dir), nil
}

// PlanSwap exchanges the display orders of a and b.
func PlanSwap(a, b *Task) map[string]int {
	return map[string]int{
		a.ID: b.DisplayOrder,
		b.ID: a.DisplayOrder,
	}
}

// ApplyOrders writes planned orders back onto tasks.
func ApplyOrders(tasks []*Task, changes map[string]int) {
	for _, t := range tasks {
		if order, ok := changes[t.ID]; ok {
			t.DisplayOrder = order
		}
	}
}
