package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowtrack/flowtrack-api/internal/constants"
	"github.com/flowtrack/flowtrack-api/internal/metrics"
	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/policy"
	"github.com/flowtrack/flowtrack-api/internal/repository"
	"github.com/flowtrack/flowtrack-api/internal/utils"
)

// Values accepted by the assigned filter.
const (
	AssignedToMe = "me"
	Unassigned   = "unassigned"
)

// TaskService applies the task workflow and role rules on top of the store.
type TaskService struct {
	store   repository.Store
	drafter TaskDrafter
}

// NewTaskService creates a new TaskService. drafter may be nil.
func NewTaskService(store repository.Store, drafter TaskDrafter) *TaskService {
	return &TaskService{
		store:   store,
		drafter: drafter,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  *string
	AssignedToID *uuid.UUID
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status   string
	Assigned string
	Query    string
	Page     int
	Limit    int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []models.Task
	Total      int64
	Pagination utils.PaginationParams
}

// Create creates a task in TODO, optionally assigned to an EMPLOYEE.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput, caller *models.User) (*models.Task, error) {
	if !policy.Allows(caller.Role, policy.ActionCreateTask) {
		return nil, ErrPermissionDenied
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	var created *models.Task
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if input.AssignedToID != nil {
			if _, err := findAssignee(ctx, tx, *input.AssignedToID); err != nil {
				return err
			}
		}

		task := &models.Task{
			Title:        title,
			Description:  normalizeDescription(input.Description),
			Status:       models.TaskStatusTodo,
			CreatedByID:  caller.ID,
			AssignedToID: input.AssignedToID,
		}
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		reloaded, err := tx.Tasks().FindByID(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		created = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCreatedTotal.WithLabelValues(strconv.FormatBool(created.AssignedToID != nil)).Inc()
	return created, nil
}

// List returns the tasks visible to caller that match input.
//
// EMPLOYEE callers only ever see tasks assigned to themselves, whatever the
// filters say. Every input is validated before the store is queried.
func (s *TaskService) List(ctx context.Context, input ListTasksInput, caller *models.User) (*TaskPage, error) {
	if !policy.Allows(caller.Role, policy.ActionListTasks) {
		return nil, ErrPermissionDenied
	}

	pagination, err := utils.NewPagination(input.Page, input.Limit)
	if err != nil {
		return nil, err
	}

	filter := repository.TaskFilter{
		Query:      strings.TrimSpace(input.Query),
		Pagination: pagination,
	}

	if policy.RestrictedToOwnTasks(caller.Role) {
		filter.AssignedToID = &caller.ID
	}

	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := models.ParseTaskStatus(raw)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		filter.Status = &status
	}

	switch strings.ToLower(strings.TrimSpace(input.Assigned)) {
	case "":
	case AssignedToMe:
		filter.AssignedToID = &caller.ID
	case Unassigned:
		if !policy.Allows(caller.Role, policy.ActionViewUnassignedTasks) {
			return nil, ErrUnassignedFilterForbidden
		}
		filter.Unassigned = true
	default:
		return nil, ErrInvalidAssignedFilter
	}

	tasks, total, err := s.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskPage{
		Tasks:      tasks,
		Total:      total,
		Pagination: pagination,
	}, nil
}

// Get returns one task if caller may see it.
func (s *TaskService) Get(ctx context.Context, taskID uuid.UUID, caller *models.User) (*models.Task, error) {
	if !policy.Allows(caller.Role, policy.ActionViewTask) {
		return nil, ErrPermissionDenied
	}

	task, err := findTask(ctx, s.store, taskID)
	if err != nil {
		return nil, err
	}

	if policy.RestrictedToOwnTasks(caller.Role) && !task.IsAssignedTo(caller.ID) {
		return nil, ErrNotTaskAssignee
	}

	return task, nil
}

// UpdateStatus moves a task to status.
//
// ADMIN and MANAGER may set any status. An EMPLOYEE may only move a task
// assigned to them, one step forward along the workflow.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status string, caller *models.User) (*models.Task, error) {
	if !policy.Allows(caller.Role, policy.ActionUpdateTaskStatus) {
		return nil, ErrPermissionDenied
	}

	next, err := models.ParseTaskStatus(status)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	var (
		updated  *models.Task
		previous models.TaskStatus
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := findTask(ctx, tx, taskID)
		if err != nil {
			return err
		}

		if policy.RestrictedToOwnTasks(caller.Role) && !task.IsAssignedTo(caller.ID) {
			return ErrNotTaskAssignee
		}

		if !policy.BypassesWorkflow(caller.Role) && !task.Status.CanTransitionTo(next) {
			metrics.TaskTransitionsRejectedTotal.WithLabelValues(string(task.Status), string(next)).Inc()
			return &TransitionError{From: task.Status, To: next}
		}

		previous = task.Status
		task.Status = next
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TaskStatusTransitionsTotal.WithLabelValues(string(previous), string(next), string(caller.Role)).Inc()
	return updated, nil
}

// Assign sets the task's assignee. The status is left untouched.
func (s *TaskService) Assign(ctx context.Context, taskID, assigneeID uuid.UUID, caller *models.User) (*models.Task, error) {
	if !policy.Allows(caller.Role, policy.ActionAssignTask) {
		return nil, ErrPermissionDenied
	}

	var updated *models.Task
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := findTask(ctx, tx, taskID)
		if err != nil {
			return err
		}

		assignee, err := findAssignee(ctx, tx, assigneeID)
		if err != nil {
			return err
		}

		task.AssignedToID = &assignee.ID
		task.AssignedTo = assignee
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return fmt.Errorf("failed to assign task: %w", err)
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TaskAssignmentsTotal.Inc()
	return updated, nil
}

// DraftTasksInput represents input for AI task drafting
type DraftTasksInput struct {
	Text string
}

// DraftTasks asks the drafter to suggest tasks from free text. Drafts are not persisted.
func (s *TaskService) DraftTasks(ctx context.Context, input DraftTasksInput, caller *models.User) ([]TaskDraft, error) {
	if !policy.Allows(caller.Role, policy.ActionDraftTasks) {
		return nil, ErrPermissionDenied
	}
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrDraftTextRequired
	}

	drafts, err := s.drafter.DraftTasks(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]TaskDraft, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}
		draft.Description = strings.TrimSpace(draft.Description)
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

func findTask(ctx context.Context, store repository.Store, id uuid.UUID) (*models.Task, error) {
	task, err := store.Tasks().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// findAssignee loads id and checks it may hold tasks.
func findAssignee(ctx context.Context, store repository.Store, id uuid.UUID) (*models.User, error) {
	user, err := store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	if user.Role != models.RoleEmployee {
		return nil, ErrAssigneeNotEmployee
	}
	return user, nil
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
