package models

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// MaxTextLength bounds the task text column.
const MaxTextLength = 500

type Task struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Text      string    `json:"text" gorm:"size:500;not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	Priority  Priority  `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	DueDate   *Date     `json:"dueDate" gorm:"type:date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Overdue reports whether the task's due date has passed without the task
// being completed. Tasks without a due date are never overdue.
func (t Task) Overdue(today Date) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(today)
}
