package store

import (
	"errors"
	"testing"
	"time"
)

func TestTaskCreateAndList(t *testing.T) {
	db := openTestDB(t)
	tasks := NewTaskStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")

	due := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	tasks.Create("Mow lawn", "chores", &due, &user.ID)
	tasks.Create("Renew passport", "errands", nil, nil)

	all, err := tasks.List(TaskFilter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}
	// Dated tasks come before undated ones.
	if all[0].Title != "Mow lawn" {
		t.Errorf("first task = %q, want dated task first", all[0].Title)
	}

	mine, _ := tasks.List(TaskFilter{AssignedTo: &user.ID})
	if len(mine) != 1 || mine[0].Title != "Mow lawn" {
		t.Errorf("assignee filter = %+v", mine)
	}

	chores, _ := tasks.List(TaskFilter{Category: strPtr("chores")})
	if len(chores) != 1 {
		t.Errorf("expected 1 chore, got %d", len(chores))
	}

	bad := int64(9999)
	if _, err := tasks.Create("X", "chores", nil, &bad); !errors.Is(err, ErrNotFound) {
		t.Errorf("create with unknown assignee err = %v, want ErrNotFound", err)
	}
}

func TestTaskCompleteAndFilter(t *testing.T) {
	db := openTestDB(t)
	tasks := NewTaskStore(db)

	a, _ := tasks.Create("One", "chores", nil, nil)
	tasks.Create("Two", "chores", nil, nil)

	if _, err := tasks.Update(a.ID, TaskUpdate{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	open, _ := tasks.List(TaskFilter{Completed: boolPtr(false)})
	if len(open) != 1 || open[0].Title != "Two" {
		t.Errorf("open tasks = %+v", open)
	}
	done, _ := tasks.List(TaskFilter{Completed: boolPtr(true)})
	if len(done) != 1 || done[0].Title != "One" {
		t.Errorf("done tasks = %+v", done)
	}
}

func TestTaskListDueBetween(t *testing.T) {
	db := openTestDB(t)
	tasks := NewTaskStore(db)

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	soon := base.Add(12 * time.Hour)
	later := base.Add(96 * time.Hour)

	tasks.Create("Soon", "chores", &soon, nil)
	tasks.Create("Later", "chores", &later, nil)
	completed, _ := tasks.Create("Done already", "chores", &soon, nil)
	tasks.Update(completed.ID, TaskUpdate{Completed: boolPtr(true)})

	got, err := tasks.ListDueBetween(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list due between: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Soon" {
		t.Errorf("due window = %+v, want only Soon", got)
	}
}

func TestTaskDelete(t *testing.T) {
	db := openTestDB(t)
	tasks := NewTaskStore(db)

	task, _ := tasks.Create("One", "chores", nil, nil)
	if err := tasks.Delete(task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := tasks.Delete(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}
