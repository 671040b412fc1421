package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/repository"
	"github.com/flowtrack/flowtrack-api/internal/utils"
)

type TaskServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     repository.Store
	drafter   *fakeDrafter
	service   *TaskService
	admin     *models.User
	manager   *models.User
	employee  *models.User
	colleague *models.User
}

func (s *TaskServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, _ = newTestStore(s.T())
	s.drafter = &fakeDrafter{}
	s.service = NewTaskService(s.store, s.drafter)

	s.admin = seedUser(s.T(), s.store, "admin@example.com", models.RoleAdmin)
	s.manager = seedUser(s.T(), s.store, "manager@example.com", models.RoleManager)
	s.employee = seedUser(s.T(), s.store, "employee@example.com", models.RoleEmployee)
	s.colleague = seedUser(s.T(), s.store, "colleague@example.com", models.RoleEmployee)
}

func (s *TaskServiceTestSuite) createTask(title string, assignee *models.User) *models.Task {
	input := CreateTaskInput{Title: title}
	if assignee != nil {
		input.AssignedToID = &assignee.ID
	}
	task, err := s.service.Create(s.ctx, input, s.manager)
	s.Require().NoError(err)
	return task
}

func (s *TaskServiceTestSuite) TestCreate_ByManager() {
	desc := "  quarterly numbers  "
	task, err := s.service.Create(s.ctx, CreateTaskInput{
		Title:        "  Prepare report ",
		Description:  &desc,
		AssignedToID: &s.employee.ID,
	}, s.manager)
	s.Require().NoError(err)

	s.Equal("Prepare report", task.Title)
	s.Require().NotNil(task.Description)
	s.Equal("quarterly numbers", *task.Description)
	s.Equal(models.TaskStatusTodo, task.Status)
	s.Equal(s.manager.ID, task.CreatedByID)
	s.Require().NotNil(task.AssignedTo)
	s.Equal(s.employee.ID, task.AssignedTo.ID)
}

func (s *TaskServiceTestSuite) TestCreate_DeniedForEmployee() {
	_, err := s.service.Create(s.ctx, CreateTaskInput{Title: "Sneaky"}, s.employee)
	s.ErrorIs(err, ErrPermissionDenied)
}

func (s *TaskServiceTestSuite) TestCreate_Validation() {
	_, err := s.service.Create(s.ctx, CreateTaskInput{Title: "   "}, s.admin)
	s.ErrorIs(err, ErrTitleRequired)

	missing := uuid.New()
	_, err = s.service.Create(s.ctx, CreateTaskInput{Title: "t", AssignedToID: &missing}, s.admin)
	s.ErrorIs(err, ErrAssigneeNotFound)

	_, err = s.service.Create(s.ctx, CreateTaskInput{Title: "t", AssignedToID: &s.manager.ID}, s.admin)
	s.ErrorIs(err, ErrAssigneeNotEmployee)

	page, err := s.service.List(s.ctx, ListTasksInput{Page: 1, Limit: 10}, s.admin)
	s.Require().NoError(err)
	s.EqualValues(0, page.Total)
}

func (s *TaskServiceTestSuite) TestList_EmployeeSeesOnlyOwnTasks() {
	mine := s.createTask("mine", s.employee)
	s.createTask("theirs", s.colleague)
	s.createTask("nobody's", nil)

	page, err := s.service.List(s.ctx, ListTasksInput{Page: 1, Limit: 10}, s.employee)
	s.Require().NoError(err)
	s.EqualValues(1, page.Total)
	s.Require().Len(page.Tasks, 1)
	s.Equal(mine.ID, page.Tasks[0].ID)

	page, err = s.service.List(s.ctx, ListTasksInput{Query: "theirs", Page: 1, Limit: 10}, s.employee)
	s.Require().NoError(err)
	s.Empty(page.Tasks)
}

func (s *TaskServiceTestSuite) TestList_UnassignedFilter() {
	s.createTask("assigned", s.employee)
	open := s.createTask("open", nil)

	_, err := s.service.List(s.ctx, ListTasksInput{Assigned: Unassigned, Page: 1, Limit: 10}, s.employee)
	s.ErrorIs(err, ErrUnassignedFilterForbidden)

	page, err := s.service.List(s.ctx, ListTasksInput{Assigned: Unassigned, Page: 1, Limit: 10}, s.manager)
	s.Require().NoError(err)
	s.Require().Len(page.Tasks, 1)
	s.Equal(open.ID, page.Tasks[0].ID)
}

func (s *TaskServiceTestSuite) TestList_FiltersCombine() {
	s.createTask("deploy api", s.employee)
	second := s.createTask("deploy web", s.employee)
	s.createTask("deploy db", s.colleague)

	_, err := s.service.UpdateStatus(s.ctx, second.ID, "IN_PROGRESS", s.employee)
	s.Require().NoError(err)

	page, err := s.service.List(s.ctx, ListTasksInput{
		Status:   "in_progress",
		Assigned: AssignedToMe,
		Query:    "DEPLOY",
		Page:     1,
		Limit:    10,
	}, s.employee)
	s.Require().NoError(err)
	s.Require().Len(page.Tasks, 1)
	s.Equal(second.ID, page.Tasks[0].ID)

	page, err = s.service.List(s.ctx, ListTasksInput{Assigned: AssignedToMe, Page: 1, Limit: 10}, s.manager)
	s.Require().NoError(err)
	s.Empty(page.Tasks)
}

func (s *TaskServiceTestSuite) TestList_InvalidFilters() {
	_, err := s.service.List(s.ctx, ListTasksInput{Status: "BLOCKED", Page: 1, Limit: 10}, s.admin)
	s.ErrorIs(err, ErrInvalidStatus)

	_, err = s.service.List(s.ctx, ListTasksInput{Assigned: "someone", Page: 1, Limit: 10}, s.admin)
	s.ErrorIs(err, ErrInvalidAssignedFilter)
}

func (s *TaskServiceTestSuite) TestList_Pagination() {
	for i := 0; i < 5; i++ {
		s.createTask(fmt.Sprintf("task %d", i), nil)
	}

	first, err := s.service.List(s.ctx, ListTasksInput{Page: 1, Limit: 2}, s.admin)
	s.Require().NoError(err)
	second, err := s.service.List(s.ctx, ListTasksInput{Page: 2, Limit: 2}, s.admin)
	s.Require().NoError(err)
	last, err := s.service.List(s.ctx, ListTasksInput{Page: 3, Limit: 2}, s.admin)
	s.Require().NoError(err)

	s.EqualValues(5, first.Total)
	s.Len(first.Tasks, 2)
	s.Len(second.Tasks, 2)
	s.Len(last.Tasks, 1)
	s.Equal("task 0", first.Tasks[0].Title)
	s.Equal("task 2", second.Tasks[0].Title)
	s.Equal("task 4", last.Tasks[0].Title)
	s.Equal(3, last.Pagination.TotalPages(last.Total))
}

func (s *TaskServiceTestSuite) TestUpdateStatus_EmployeeWorkflow() {
	task := s.createTask("ship it", s.employee)

	updated, err := s.service.UpdateStatus(s.ctx, task.ID, "IN_PROGRESS", s.employee)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusInProgress, updated.Status)
	s.True(!updated.UpdatedAt.Before(task.UpdatedAt))

	updated, err = s.service.UpdateStatus(s.ctx, task.ID, "DONE", s.employee)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, updated.Status)

	_, err = s.service.UpdateStatus(s.ctx, task.ID, "TODO", s.employee)
	s.ErrorIs(err, ErrInvalidTransition)

	var transitionErr *TransitionError
	s.Require().True(errors.As(err, &transitionErr))
	s.Equal(models.TaskStatusDone, transitionErr.From)
	s.Equal(models.TaskStatusTodo, transitionErr.To)

	stored, err := s.service.Get(s.ctx, task.ID, s.admin)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, stored.Status)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_EmployeeCannotSkip() {
	task := s.createTask("skip", s.employee)

	_, err := s.service.UpdateStatus(s.ctx, task.ID, "DONE", s.employee)
	var transitionErr *TransitionError
	s.Require().True(errors.As(err, &transitionErr))
	s.Equal(models.TaskStatusTodo, transitionErr.From)
	s.Equal(models.TaskStatusDone, transitionErr.To)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_PrivilegedOverride() {
	task := s.createTask("override", s.employee)

	updated, err := s.service.UpdateStatus(s.ctx, task.ID, "DONE", s.manager)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, updated.Status)

	updated, err = s.service.UpdateStatus(s.ctx, task.ID, "TODO", s.admin)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusTodo, updated.Status)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_Errors() {
	task := s.createTask("not yours", s.colleague)

	_, err := s.service.UpdateStatus(s.ctx, task.ID, "IN_PROGRESS", s.employee)
	s.ErrorIs(err, ErrNotTaskAssignee)

	unassigned := s.createTask("nobody", nil)
	_, err = s.service.UpdateStatus(s.ctx, unassigned.ID, "IN_PROGRESS", s.employee)
	s.ErrorIs(err, ErrNotTaskAssignee)

	_, err = s.service.UpdateStatus(s.ctx, uuid.New(), "DONE", s.admin)
	s.ErrorIs(err, ErrTaskNotFound)

	_, err = s.service.UpdateStatus(s.ctx, task.ID, "ARCHIVED", s.admin)
	s.ErrorIs(err, ErrInvalidStatus)
}

func (s *TaskServiceTestSuite) TestAssign() {
	task := s.createTask("assign me", nil)
	_, err := s.service.UpdateStatus(s.ctx, task.ID, "IN_PROGRESS", s.manager)
	s.Require().NoError(err)

	updated, err := s.service.Assign(s.ctx, task.ID, s.employee.ID, s.manager)
	s.Require().NoError(err)
	s.Require().NotNil(updated.AssignedToID)
	s.Equal(s.employee.ID, *updated.AssignedToID)
	s.Equal(models.TaskStatusInProgress, updated.Status)

	reassigned, err := s.service.Assign(s.ctx, task.ID, s.colleague.ID, s.admin)
	s.Require().NoError(err)
	s.Equal(s.colleague.ID, *reassigned.AssignedToID)

	stored, err := s.service.Get(s.ctx, task.ID, s.colleague)
	s.Require().NoError(err)
	s.Require().NotNil(stored.AssignedTo)
	s.Equal(s.colleague.Email, stored.AssignedTo.Email)
}

func (s *TaskServiceTestSuite) TestAssign_Errors() {
	task := s.createTask("assign me", nil)

	_, err := s.service.Assign(s.ctx, task.ID, s.employee.ID, s.employee)
	s.ErrorIs(err, ErrPermissionDenied)

	_, err = s.service.Assign(s.ctx, task.ID, s.manager.ID, s.admin)
	s.ErrorIs(err, ErrAssigneeNotEmployee)

	_, err = s.service.Assign(s.ctx, task.ID, uuid.New(), s.admin)
	s.ErrorIs(err, ErrAssigneeNotFound)

	_, err = s.service.Assign(s.ctx, uuid.New(), s.employee.ID, s.admin)
	s.ErrorIs(err, ErrTaskNotFound)

	stored, err := s.service.Get(s.ctx, task.ID, s.admin)
	s.Require().NoError(err)
	s.Nil(stored.AssignedToID)
}

func (s *TaskServiceTestSuite) TestGet() {
	task := s.createTask("visible", s.employee)

	got, err := s.service.Get(s.ctx, task.ID, s.employee)
	s.Require().NoError(err)
	s.Equal(task.ID, got.ID)

	_, err = s.service.Get(s.ctx, task.ID, s.colleague)
	s.ErrorIs(err, ErrNotTaskAssignee)

	_, err = s.service.Get(s.ctx, uuid.New(), s.admin)
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestDraftTasks() {
	s.drafter.drafts = []TaskDraft{
		{Title: "  Book venue ", Description: " before friday "},
		{Title: "   "},
	}

	drafts, err := s.service.DraftTasks(s.ctx, DraftTasksInput{Text: "book the venue"}, s.manager)
	s.Require().NoError(err)
	s.Equal([]TaskDraft{{Title: "Book venue", Description: "before friday"}}, drafts)

	_, err = s.service.DraftTasks(s.ctx, DraftTasksInput{Text: "x"}, s.employee)
	s.ErrorIs(err, ErrPermissionDenied)

	_, err = s.service.DraftTasks(s.ctx, DraftTasksInput{Text: "  "}, s.manager)
	s.ErrorIs(err, ErrDraftTextRequired)

	s.drafter.drafts = nil
	_, err = s.service.DraftTasks(s.ctx, DraftTasksInput{Text: "nothing"}, s.manager)
	s.ErrorIs(err, ErrAINoTasksGenerated)

	s.drafter.drafts = []TaskDraft{{Title: ""}}
	_, err = s.service.DraftTasks(s.ctx, DraftTasksInput{Text: "blank"}, s.manager)
	s.ErrorIs(err, ErrAINoValidTasks)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

func TestDraftTasks_NotConfigured(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewTaskService(store, nil)
	manager := &models.User{ID: uuid.New(), Role: models.RoleManager}

	_, err := service.DraftTasks(context.Background(), DraftTasksInput{Text: "x"}, manager)
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)
}

func newMockStore(t *testing.T) (repository.Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return repository.NewStore(db), mock
}

func TestList_RejectsBadPaginationBeforeQuerying(t *testing.T) {
	store, mock := newMockStore(t)
	service := NewTaskService(store, nil)
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	tests := []struct {
		name  string
		page  int
		limit int
		want  error
	}{
		{"page zero", 0, 10, utils.ErrInvalidPage},
		{"limit zero", 1, 0, utils.ErrInvalidLimit},
		{"limit too large", 1, 51, utils.ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.List(context.Background(), ListTasksInput{Page: tt.page, Limit: tt.limit}, admin)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_RollsBackOnStoreFailure(t *testing.T) {
	store, mock := newMockStore(t)
	service := NewTaskService(store, nil)
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	dbErr := errors.New("connection reset by peer")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "tasks"`).WillReturnError(dbErr)
	mock.ExpectRollback()

	_, err := service.UpdateStatus(context.Background(), uuid.New(), "DONE", admin)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
