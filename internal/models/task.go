package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

func ValidStatus(s string) bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusCompleted
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is the persisted task record. CreatedByID is set once at creation
// and never updated; AssignedUserID is nullable.
type Task struct {
	ID             uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description"`
	DueDate        time.Time  `json:"dueDate" gorm:"not null"`
	Status         string     `json:"status" gorm:"not null;default:'To Do'"`
	Priority       string     `json:"priority" gorm:"not null;default:'Medium'"`
	AssignedUserID *uuid.UUID `json:"-" gorm:"type:uuid"`
	CreatedByID    uuid.UUID  `json:"-" gorm:"type:uuid;not null"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	AssignedUser *UserRef `json:"assignedUser" gorm:"foreignKey:AssignedUserID"`
	CreatedBy    *UserRef `json:"createdBy" gorm:"foreignKey:CreatedByID"`
}

// UserRef is the name+email projection attached to task responses in
// place of the full user record.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (UserRef) TableName() string {
	return "users"
}
