package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

func newTestTaskService() (*TaskService, *memTaskRepo) {
	repo := newMemTaskRepo()
	return NewTaskService(repo, zerolog.Nop()), repo
}

func input(name string) ports.TaskInput {
	return ports.TaskInput{Name: name, Cost: 10, DueDate: "01/03/2024"}
}

func mustCreate(t *testing.T, svc *TaskService, userID, name string) *domain.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), userID, input(name))
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return task
}

func assertOrders(t *testing.T, repo *memTaskRepo, userID string, want map[string]int) {
	t.Helper()
	got := repo.orders(userID)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for name, order := range want {
		if got[name] != order {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func assertDense(t *testing.T, repo *memTaskRepo, userID string) {
	t.Helper()
	seen := make(map[int]bool)
	for _, order := range repo.orders(userID) {
		seen[order] = true
	}
	n := len(repo.orders(userID))
	for i := 1; i <= n; i++ {
		if !seen[i] {
			t.Fatalf("orders %v are not exactly 1..%d", repo.orders(userID), n)
		}
	}
}

func TestTaskService_Create_AppendsAtEnd(t *testing.T) {
	svc, repo := newTestTaskService()

	a := mustCreate(t, svc, "u1", "A")
	mustCreate(t, svc, "u1", "B")
	mustCreate(t, svc, "u2", "X")

	if a.DisplayOrder != 1 {
		t.Fatalf("expected first task at 1, got %d", a.DisplayOrder)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !a.DueDate.Equal(want) {
		t.Fatalf("expected due date %v, got %v", want, a.DueDate)
	}
	assertOrders(t, repo, "u1", map[string]int{"A": 1, "B": 2})
	assertOrders(t, repo, "u2", map[string]int{"X": 1})
}

func TestTaskService_Create_DuplicateName(t *testing.T) {
	svc, _ := newTestTaskService()
	mustCreate(t, svc, "u1", "Report")

	_, err := svc.Create(context.Background(), "u1", input("Report"))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["name"] != msgDuplicateName {
		t.Fatalf("unexpected field messages: %v", verr.Fields)
	}

	if _, err := svc.Create(context.Background(), "u2", input("Report")); err != nil {
		t.Fatalf("same name for another user must be accepted: %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", input("report")); err != nil {
		t.Fatalf("names differing in case must be accepted: %v", err)
	}
}

func TestTaskService_Create_NameIsExact(t *testing.T) {
	svc, _ := newTestTaskService()
	mustCreate(t, svc, "u1", "A")

	task, err := svc.Create(context.Background(), "u1", input("A "))
	if err != nil {
		t.Fatalf("name with trailing space must not collide: %v", err)
	}
	if task.Name != "A " {
		t.Fatalf("expected name stored as typed, got %q", task.Name)
	}

	_, err = svc.Create(context.Background(), "u1", input("   "))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["name"] == "" {
		t.Fatalf("expected name required error, got %v", err)
	}
}

func TestTaskService_Create_NonFiniteCost(t *testing.T) {
	for _, cost := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		svc, repo := newTestTaskService()

		in := input("A")
		in.Cost = cost
		_, err := svc.Create(context.Background(), "u1", in)

		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("cost %v: expected ValidationError, got %v", cost, err)
		}
		if verr.Fields["cost"] != "Cost must be a number." {
			t.Fatalf("cost %v: unexpected field messages: %v", cost, verr.Fields)
		}
		if n := len(repo.orders("u1")); n != 0 {
			t.Fatalf("cost %v: expected nothing stored, got %d tasks", cost, n)
		}
	}
}

func TestTaskService_Update_NonFiniteCost(t *testing.T) {
	svc, _ := newTestTaskService()
	task := mustCreate(t, svc, "u1", "A")

	in := input("A")
	in.Cost = math.NaN()
	_, err := svc.Update(context.Background(), "u1", task.ID, in)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["cost"] == "" {
		t.Fatalf("expected cost error, got %v", err)
	}
}

func TestTaskService_Create_InvalidDates(t *testing.T) {
	svc, repo := newTestTaskService()

	in := input("A")
	in.DueDate = "31/02/2024"
	in.CompletionDate = "2024-03-01"
	_, err := svc.Create(context.Background(), "u1", in)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["due_date"] != msgInvalidDate || verr.Fields["completion_date"] != msgInvalidDate {
		t.Fatalf("unexpected field messages: %v", verr.Fields)
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("invalid task must not be stored")
	}
}

func TestTaskService_Create_RequiredAndChoices(t *testing.T) {
	svc, _ := newTestTaskService()

	_, err := svc.Create(context.Background(), "u1", ports.TaskInput{Cost: -1, Status: "later", Priority: "urgent"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, f := range []string{"name", "cost", "due_date", "status", "priority"} {
		if verr.Fields[f] == "" {
			t.Fatalf("expected message for %s, got %v", f, verr.Fields)
		}
	}
}

func TestTaskService_Update_KeepsOwnName(t *testing.T) {
	svc, repo := newTestTaskService()
	a := mustCreate(t, svc, "u1", "A")
	mustCreate(t, svc, "u1", "B")

	in := input("A")
	in.Notes = "changed"
	updated, err := svc.Update(context.Background(), "u1", a.ID, in)
	if err != nil {
		t.Fatalf("editing a task to its own name must pass: %v", err)
	}
	if updated.Notes != "changed" {
		t.Fatalf("expected notes to change, got %q", updated.Notes)
	}
	assertOrders(t, repo, "u1", map[string]int{"A": 1, "B": 2})

	_, err = svc.Update(context.Background(), "u1", a.ID, input("B"))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["name"] != msgDuplicateName {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestTaskService_Update_OtherUser(t *testing.T) {
	svc, _ := newTestTaskService()
	a := mustCreate(t, svc, "u1", "A")

	if _, err := svc.Update(context.Background(), "u2", a.ID, input("Z")); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_DeleteAndMove_Example(t *testing.T) {
	svc, repo := newTestTaskService()
	a := mustCreate(t, svc, "u1", "A")
	b := mustCreate(t, svc, "u1", "B")
	mustCreate(t, svc, "u1", "C")

	if err := svc.Delete(context.Background(), "u1", b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertOrders(t, repo, "u1", map[string]int{"A": 1, "C": 2})

	moved, err := svc.Move(context.Background(), "u1", a.ID, domain.MoveDown)
	if err != nil || !moved {
		t.Fatalf("move down: moved=%v err=%v", moved, err)
	}
	assertOrders(t, repo, "u1", map[string]int{"C": 1, "A": 2})
}

func TestTaskService_Delete_ShiftsLaterTasks(t *testing.T) {
	svc, repo := newTestTaskService()
	var ids []string
	for i := 1; i <= 5; i++ {
		ids = append(ids, mustCreate(t, svc, "u1", fmt.Sprintf("T%d", i)).ID)
	}

	if err := svc.Delete(context.Background(), "u1", ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertOrders(t, repo, "u1", map[string]int{"T1": 1, "T3": 2, "T4": 3, "T5": 4})

	if err := svc.Delete(context.Background(), "u1", ids[4]); err != nil {
		t.Fatalf("delete last: %v", err)
	}
	mustCreate(t, svc, "u1", "T6")
	assertOrders(t, repo, "u1", map[string]int{"T1": 1, "T3": 2, "T4": 3, "T6": 4})
	assertDense(t, repo, "u1")
}

func TestTaskService_Delete_OtherUser(t *testing.T) {
	svc, repo := newTestTaskService()
	a := mustCreate(t, svc, "u1", "A")

	if err := svc.Delete(context.Background(), "u2", a.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	assertOrders(t, repo, "u1", map[string]int{"A": 1})
}

func TestTaskService_Move_RoundTrip(t *testing.T) {
	svc, repo := newTestTaskService()
	mustCreate(t, svc, "u1", "A")
	b := mustCreate(t, svc, "u1", "B")
	mustCreate(t, svc, "u1", "C")

	if _, err := svc.Move(context.Background(), "u1", b.ID, domain.MoveUp); err != nil {
		t.Fatalf("move up: %v", err)
	}
	assertOrders(t, repo, "u1", map[string]int{"B": 1, "A": 2, "C": 3})

	if _, err := svc.Move(context.Background(), "u1", b.ID, domain.MoveDown); err != nil {
		t.Fatalf("move down: %v", err)
	}
	assertOrders(t, repo, "u1", map[string]int{"A": 1, "B": 2, "C": 3})
}

func TestTaskService_Move_Boundaries(t *testing.T) {
	svc, repo := newTestTaskService()
	a := mustCreate(t, svc, "u1", "A")
	b := mustCreate(t, svc, "u1", "B")

	if _, err := svc.Move(context.Background(), "u1", a.ID, domain.MoveUp); !errors.Is(err, domain.ErrAlreadyFirst) {
		t.Fatalf("expected ErrAlreadyFirst, got %v", err)
	}
	if _, err := svc.Move(context.Background(), "u1", b.ID, domain.MoveDown); !errors.Is(err, domain.ErrAlreadyLast) {
		t.Fatalf("expected ErrAlreadyLast, got %v", err)
	}
	assertOrders(t, repo, "u1", map[string]int{"A": 1, "B": 2})
}

func TestTaskService_Move_MissingPartnerIsNoop(t *testing.T) {
	svc, repo := newTestTaskService()
	a := mustCreate(t, svc, "u1", "A")
	c := mustCreate(t, svc, "u1", "C")
	// Simulate a gap left by a concurrent request.
	repo.tasks[c.ID].DisplayOrder = 3

	moved, err := svc.Move(context.Background(), "u1", a.ID, domain.MoveDown)
	if err != nil || moved {
		t.Fatalf("expected silent no-op, got moved=%v err=%v", moved, err)
	}
	assertOrders(t, repo, "u1", map[string]int{"A": 1, "C": 3})
}
