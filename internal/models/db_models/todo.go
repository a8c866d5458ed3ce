package db_models

import (
	"time"

	"github.com/google/uuid"
)

type TodoStatus string

const (
	TodoPending TodoStatus = "PENDING"
	TodoDone    TodoStatus = "DONE"
	TodoSkipped TodoStatus = "SKIPPED"
)

func (s TodoStatus) Valid() bool {
	switch s {
	case TodoPending, TodoDone, TodoSkipped:
		return true
	}
	return false
}

type Todo struct {
	BaseModel
	UserID  string     `gorm:"index;not null"`
	TripID  *uuid.UUID `gorm:"type:uuid;index"`
	Title   string     `gorm:"not null"`
	Kind    string
	Status  TodoStatus `gorm:"size:16;not null;default:PENDING;index"`
	DueDate *time.Time
}

type TodoTemplate struct {
	BaseModel
	Title string `gorm:"not null"`
	Kind  string
}
