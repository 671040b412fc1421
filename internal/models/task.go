package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatusEnumName is the PostgreSQL enum type backing tasks.status.
const TaskStatusEnumName = "task_status_enum"

// AllTaskStatuses lists every status in workflow order.
var AllTaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// employeeTransitions is the forward-only workflow an EMPLOYEE must follow.
// DONE is terminal.
var employeeTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:       {TaskStatusInProgress},
	TaskStatusInProgress: {TaskStatusDone},
	TaskStatusDone:       {},
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func (s TaskStatus) NextStatuses() []TaskStatus {
	next := employeeTransitions[s]
	out := make([]TaskStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether moving from s to next follows the workflow.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range employeeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GormDBDataType stores status as a closed enumeration where the dialect supports one.
func (TaskStatus) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return TaskStatusEnumName
	case "mysql":
		return "ENUM('TODO','IN_PROGRESS','DONE')"
	default:
		return "varchar(20)"
	}
}

// ParseTaskStatus converts a raw value into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return status, nil
}

type Task struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description"`
	Status       TaskStatus `gorm:"not null;default:'TODO'" json:"status"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"created_by_id"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to_id"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	CreatedBy  *User `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedTo *User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

// BeforeCreate assigns an ID and the initial status.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	return nil
}

// IsAssignedTo reports whether the task is currently assigned to userID.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}
