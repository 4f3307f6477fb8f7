package model

import "time"

type Task struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Completed  bool       `json:"completed"`
	DueDate    *time.Time `json:"due_date"`
	AssignedTo *int64     `json:"assigned_to"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
