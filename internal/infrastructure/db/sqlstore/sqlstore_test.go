package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
	"github.com/taskdesk/taskdesk/internal/core/service"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite:///"+filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB, name string) *domain.User {
	t.Helper()
	u, err := NewUserRepository(db).Create(context.Background(), &domain.User{
		Username:     name,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func newTask(userID, name string, order int) *domain.Task {
	return &domain.Task{
		UserID:       userID,
		Name:         name,
		Cost:         1.5,
		DueDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:    time.Now().UTC(),
		DisplayOrder: order,
	}
}

func TestParseURL(t *testing.T) {
	cases := []struct {
		url     string
		dialect dialect
		driver  string
		dsn     string
	}{
		{"sqlite://tasks.db", dialectSQLite, "sqlite", "tasks.db"},
		{"sqlite:///tasks.db", dialectSQLite, "sqlite", "tasks.db"},
		{"sqlite:///data/tasks.db", dialectSQLite, "sqlite", "data/tasks.db"},
		{"sqlite:////var/lib/tasks.db", dialectSQLite, "sqlite", "/var/lib/tasks.db"},
		{"sqlite://:memory:", dialectSQLite, "sqlite", ":memory:"},
		{"postgres://u:p@localhost:5432/tasks?sslmode=disable", dialectPostgres, "pgx", "postgres://u:p@localhost:5432/tasks?sslmode=disable"},
	}
	for _, tc := range cases {
		d, driver, dsn, err := parseURL(tc.url)
		if err != nil {
			t.Fatalf("%s: %v", tc.url, err)
		}
		if d != tc.dialect || driver != tc.driver || dsn != tc.dsn {
			t.Fatalf("%s: got (%v, %s, %s)", tc.url, d, driver, dsn)
		}
	}

	d, driver, dsn, err := parseURL("mysql://root:secret@db:3306/tasks")
	if err != nil {
		t.Fatalf("mysql: %v", err)
	}
	if d != dialectMySQL || driver != "mysql" {
		t.Fatalf("mysql: got (%v, %s)", d, driver)
	}
	if !strings.HasPrefix(dsn, "root:secret@tcp(db:3306)/tasks") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("unexpected mysql dsn %q", dsn)
	}

	for _, bad := range []string{"tasks.db", "redis://localhost", "sqlite://", "sqlite:///"} {
		if _, _, _, err := parseURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSchemaFor_MySQLNamesAreCaseSensitive(t *testing.T) {
	ddl := strings.Join(schemaFor(dialectMySQL), "\n")
	for _, column := range []string{"username", "name"} {
		want := "\t" + column + " VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"
		if !strings.Contains(ddl, want) {
			t.Fatalf("expected mysql column %q to use a binary collation", column)
		}
	}
	for _, d := range []dialect{dialectSQLite, dialectPostgres} {
		if strings.Contains(strings.Join(schemaFor(d), "\n"), "utf8mb4") {
			t.Fatalf("%s schema must not carry mysql collations", d)
		}
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: dialectPostgres}
	if got := pg.rebind("a = ? AND b IN (?, ?)"); got != "a = $1 AND b IN ($2, $3)" {
		t.Fatalf("unexpected rebind: %s", got)
	}
	lite := &DB{dialect: dialectSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite query must be unchanged, got %s", got)
	}
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	if alice.ID == "" {
		t.Fatalf("expected generated id")
	}

	if _, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "x"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := repo.FindByUsername(ctx, "alice")
	if err != nil || got.ID != alice.ID {
		t.Fatalf("find by username: %+v, %v", got, err)
	}
	if _, err := repo.FindByID(ctx, alice.ID); err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if _, err := repo.FindByUsername(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTaskRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if n, err := repo.MaxDisplayOrder(ctx, alice.ID); err != nil || n != 0 {
		t.Fatalf("expected 0 for empty list, got %d, %v", n, err)
	}

	a := newTask(alice.ID, "A", 1)
	done := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	a.CompletionDate = &done
	a.Status = domain.StatusCompleted
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	b := newTask(alice.ID, "B", 2)
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("unique name per user", func(t *testing.T) {
		if err := repo.Create(ctx, newTask(alice.ID, "A", 3)); !errors.Is(err, domain.ErrDuplicateTaskName) {
			t.Fatalf("expected ErrDuplicateTaskName, got %v", err)
		}
		if err := repo.Create(ctx, newTask(bob.ID, "A", 1)); err != nil {
			t.Fatalf("same name for another user: %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.FindByID(ctx, alice.ID, a.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.Name != "A" || got.Cost != 1.5 || got.Status != domain.StatusCompleted {
			t.Fatalf("unexpected task: %+v", got)
		}
		if !got.DueDate.Equal(a.DueDate) {
			t.Fatalf("due date: got %v want %v", got.DueDate, a.DueDate)
		}
		if got.CompletionDate == nil || !got.CompletionDate.Equal(done) {
			t.Fatalf("completion date: got %v", got.CompletionDate)
		}
	})

	t.Run("scoped by user", func(t *testing.T) {
		if _, err := repo.FindByID(ctx, bob.ID, a.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
		if err := repo.Delete(ctx, bob.ID, a.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
		got, err := repo.ListByIDs(ctx, bob.ID, []string{a.ID, b.ID})
		if err != nil || len(got) != 0 {
			t.Fatalf("expected no tasks, got %d, %v", len(got), err)
		}
	})

	t.Run("lookup by name and order", func(t *testing.T) {
		got, err := repo.FindByName(ctx, alice.ID, "B")
		if err != nil || got.ID != b.ID {
			t.Fatalf("find by name: %+v, %v", got, err)
		}
		if _, err := repo.FindByName(ctx, alice.ID, "b"); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("name lookup must be case sensitive, got %v", err)
		}
		got, err = repo.FindByDisplayOrder(ctx, alice.ID, 2)
		if err != nil || got.ID != b.ID {
			t.Fatalf("find by order: %+v, %v", got, err)
		}
		if _, err := repo.FindByDisplayOrder(ctx, alice.ID, 9); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("set display orders", func(t *testing.T) {
		if err := repo.SetDisplayOrders(ctx, alice.ID, map[string]int{a.ID: 2, b.ID: 1}); err != nil {
			t.Fatalf("set orders: %v", err)
		}
		list, err := repo.ListByUser(ctx, alice.ID)
		if err != nil || len(list) != 2 {
			t.Fatalf("list: %d, %v", len(list), err)
		}
		if list[0].ID != b.ID || list[1].ID != a.ID {
			t.Fatalf("expected B before A, got %s, %s", list[0].Name, list[1].Name)
		}
		if n, _ := repo.MaxDisplayOrder(ctx, alice.ID); n != 2 {
			t.Fatalf("expected max 2, got %d", n)
		}
	})

	t.Run("update", func(t *testing.T) {
		upd, _ := repo.FindByID(ctx, alice.ID, b.ID)
		upd.Name = "A"
		if err := repo.Update(ctx, upd); !errors.Is(err, domain.ErrDuplicateTaskName) {
			t.Fatalf("expected ErrDuplicateTaskName, got %v", err)
		}
		upd.Name = "B2"
		upd.CompletionDate = nil
		if err := repo.Update(ctx, upd); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, _ := repo.FindByID(ctx, alice.ID, b.ID)
		if got.Name != "B2" || got.DisplayOrder != 1 {
			t.Fatalf("unexpected task after update: %+v", got)
		}
		ghost := newTask(alice.ID, "ghost", 1)
		ghost.ID = "missing"
		if err := repo.Update(ctx, ghost); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})
}

func TestMessageRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	empty, err := repo.ListByUser(ctx, alice.ID)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v, %v", empty, err)
	}

	q := &domain.Message{UserID: alice.ID, Role: domain.RoleUser, Content: "hello"}
	if err := repo.Append(ctx, q); err != nil {
		t.Fatalf("append: %v", err)
	}
	if q.ID == "" || q.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", q)
	}
	a := &domain.Message{UserID: alice.ID, Role: domain.RoleAssistant, Content: "hi"}
	if err := repo.Append(ctx, a); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := repo.ListByUser(ctx, alice.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %d, %v", len(list), err)
	}
	if list[0].ID != q.ID || list[1].Role != domain.RoleAssistant {
		t.Fatalf("expected oldest first, got %+v", list)
	}

	if err := repo.Delete(ctx, bob.ID, q.ID); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, alice.ID, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = repo.ListByUser(ctx, alice.ID)
	if len(list) != 1 {
		t.Fatalf("expected 1 message left, got %d", len(list))
	}
}

func TestTaskOrderingAgainstSQLite(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	repo := NewTaskRepository(db)
	svc := service.NewTaskService(repo, zerolog.Nop())
	ctx := context.Background()

	ids := map[string]string{}
	for _, name := range []string{"A", "B", "C"} {
		task, err := svc.Create(ctx, alice.ID, ports.TaskInput{Name: name, DueDate: "01/03/2024"})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		ids[name] = task.ID
	}

	if err := svc.Delete(ctx, alice.ID, ids["B"]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertNames(t, repo, alice.ID, "A", "C")

	if _, err := svc.Move(ctx, alice.ID, ids["A"], domain.MoveDown); err != nil {
		t.Fatalf("move: %v", err)
	}
	assertNames(t, repo, alice.ID, "C", "A")
}

func assertNames(t *testing.T, repo *TaskRepository, userID string, names ...string) {
	t.Helper()
	list, err := repo.ListByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != len(names) {
		t.Fatalf("expected %d tasks, got %d", len(names), len(list))
	}
	for i, task := range list {
		if task.Name != names[i] || task.DisplayOrder != i+1 {
			t.Fatalf("position %d: got %s@%d, want %s@%d", i+1, task.Name, task.DisplayOrder, names[i], i+1)
		}
	}
}
