package services

import (
	"errors"
	"fmt"

	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/security"
)

var (
	ErrPermissionDenied          = errors.New("permission denied")
	ErrTaskNotFound              = errors.New("task not found")
	ErrUserNotFound              = errors.New("user not found")
	ErrNotTaskAssignee           = errors.New("task is not assigned to you")
	ErrUnassignedFilterForbidden = errors.New("only ADMIN or MANAGER may list unassigned tasks")
	ErrAssigneeNotFound          = errors.New("assignee not found")
	ErrAssigneeNotEmployee       = errors.New("assignee is not an EMPLOYEE")
	ErrTitleRequired             = errors.New("title is required")
	ErrInvalidStatus             = errors.New("status must be one of TODO, IN_PROGRESS, DONE")
	ErrInvalidAssignedFilter     = errors.New("assigned must be one of me, unassigned")
	ErrInvalidRole               = errors.New("role must be one of ADMIN, MANAGER, EMPLOYEE")
	ErrEmailTaken                = errors.New("user with this email already exists")
	ErrEmailRequired             = errors.New("email is required")
	ErrFullNameRequired          = errors.New("full name is required")
	ErrPasswordTooLong           = security.ErrPasswordTooLong
	ErrPasswordRequired          = security.ErrPasswordEmpty
	ErrInvalidCredentials        = errors.New("incorrect email or password")
	ErrInvalidToken              = errors.New("could not validate credentials")
	ErrInvalidTransition         = errors.New("invalid status transition")
	ErrAIServiceNotConfigured    = errors.New("AI service is not configured")
	ErrAINoTasksGenerated        = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks            = errors.New("no valid tasks could be created from AI output")
	ErrDraftTextRequired         = errors.New("text is required")
)

// TransitionError reports a status change the workflow does not allow.
type TransitionError struct {
	From models.TaskStatus
	To   models.TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
