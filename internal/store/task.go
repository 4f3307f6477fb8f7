package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/bywater/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// TaskUpdate holds the fields of a partial task update.
type TaskUpdate struct {
	Title      *string
	Category   *string
	Completed  *bool
	DueDate    *time.Time
	AssignedTo *int64
}

// TaskFilter narrows List results. Nil fields match everything.
type TaskFilter struct {
	AssignedTo *int64
	Category   *string
	Completed  *bool
}

const taskCols = `id, title, category, completed, due_date, assigned_to, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var completed int
	var dueDate sql.NullTime
	var assignedTo sql.NullInt64

	err := scanner.Scan(&t.ID, &t.Title, &t.Category, &completed, &dueDate, &assignedTo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Completed = completed != 0
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	return &t, nil
}

func (s *TaskStore) Create(title, category string, dueDate *time.Time, assignedTo *int64) (*model.Task, error) {
	if assignedTo != nil {
		ok, err := userExists(s.db, *assignedTo)
		if err != nil {
			return nil, fmt.Errorf("check user: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("user %d: %w", *assignedTo, ErrNotFound)
		}
	}

	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (title, category, due_date, assigned_to) VALUES (?, ?, ?, ?)`,
		title, category, due, nullInt64(assignedTo),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(filter TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE 1=1`
	var args []any
	if filter.AssignedTo != nil {
		query += ` AND assigned_to = ?`
		args = append(args, *filter.AssignedTo)
	}
	if filter.Category != nil {
		query += ` AND category = ?`
		args = append(args, *filter.Category)
	}
	if filter.Completed != nil {
		var completed int
		if *filter.Completed {
			completed = 1
		}
		query += ` AND completed = ?`
		args = append(args, completed)
	}
	query += ` ORDER BY due_date IS NULL, due_date, created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListDueBetween returns incomplete tasks whose due date falls in
// [start, end), used by the push reminder scheduler.
func (s *TaskStore) ListDueBetween(start, end time.Time) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE completed = 0 AND due_date >= ? AND due_date < ? ORDER BY due_date`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, upd TaskUpdate) (*model.Task, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}
	if upd.AssignedTo != nil {
		ok, err := userExists(s.db, *upd.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("check user: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("user %d: %w", *upd.AssignedTo, ErrNotFound)
		}
	}

	var sets []string
	var args []any

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Completed != nil {
		var completed int
		if *upd.Completed {
			completed = 1
		}
		sets = append(sets, "completed = ?")
		args = append(args, completed)
	}
	if upd.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, upd.DueDate.UTC())
	}
	if upd.AssignedTo != nil {
		sets = append(sets, "assigned_to = ?")
		args = append(args, *upd.AssignedTo)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := s.db.Exec(
			`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			args...,
		); err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}
