package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/authz"
	"project-management/backend/internal/db"
	"project-management/backend/internal/notification"
	notificationdomain "project-management/backend/internal/notification/domain"
	notificationrepo "project-management/backend/internal/notification/repository"
	projectdomain "project-management/backend/internal/project/domain"
	projectrepo "project-management/backend/internal/project/repository"
	"project-management/backend/internal/security"
	"project-management/backend/internal/task/domain"
	taskrepo "project-management/backend/internal/task/repository"
	userdomain "project-management/backend/internal/user/domain"
)

// UserReader is the minimal user lookup needed to resolve callers.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// CreateTaskInput carries the fields for task creation.
type CreateTaskInput struct {
	Title       string
	Description string
	ProjectID   string
	AssignedTo  string
	Status      domain.Status
	Priority    domain.Priority
	DueDate     time.Time
}

// UpdateTaskInput carries the fields for a task update, including reassignment.
type UpdateTaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	Status      domain.Status
	Priority    domain.Priority
	DueDate     time.Time
}

// GanttEntry is one bar on the timeline: the task's span runs from its
// project's start date to the task's due date.
type GanttEntry struct {
	Task  *domain.Task
	Start time.Time
	End   time.Time
}

// ProjectCompletion is the DONE share of one project's tasks. Percent is 0
// for a project with no tasks.
type ProjectCompletion struct {
	ProjectID string  `json:"project_id"`
	Title     string  `json:"title"`
	Percent   float64 `json:"percent"`
}

// DashboardStats summarizes the caller's visible projects and tasks.
type DashboardStats struct {
	Projects        int                 `json:"projects"`
	Tasks           int                 `json:"tasks"`
	TasksTodo       int                 `json:"tasks_todo"`
	TasksInProgress int                 `json:"tasks_in_progress"`
	TasksDone       int                 `json:"tasks_done"`
	TasksOverdue    int                 `json:"tasks_overdue"`
	Completion      []ProjectCompletion `json:"completion"`
}

// TaskService implements the task workflow. Create, update, and delete are
// admin only; status moves are open to the assignee as well, with every
// pairwise transition between the three states permitted.
type TaskService struct {
	atomic           db.AtomicFunc
	taskRepo         taskrepo.Repository
	projectRepo      projectrepo.Repository
	notificationRepo notificationrepo.Repository
	userReader       UserReader
	authz            *authz.Evaluator
}

// NewTaskService returns a TaskService with the given dependencies.
func NewTaskService(
	atomic db.AtomicFunc,
	taskRepo taskrepo.Repository,
	projectRepo projectrepo.Repository,
	notificationRepo notificationrepo.Repository,
	userReader UserReader,
	evaluator *authz.Evaluator,
) *TaskService {
	return &TaskService{
		atomic:           atomic,
		taskRepo:         taskRepo,
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
		userReader:       userReader,
		authz:            evaluator,
	}
}

// Create creates a task in a project. Admin only. An assignee must be the
// project's owner or a member; the assignment notification commits with the task.
func (s *TaskService) Create(ctx context.Context, sess security.Session, in CreateTaskInput) (*domain.Task, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, caller, authz.ActionCreate); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("project not found")
	}
	if in.AssignedTo != "" && !p.HasMember(in.AssignedTo) {
		return nil, apperror.Validation("assignee must be a member of the project")
	}
	now := time.Now().UTC()
	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ProjectID:   in.ProjectID,
		AssignedTo:  in.AssignedTo,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if err := t.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	notifs := notification.ForTaskEvent(notification.TaskEvent{
		Kind:         notification.TaskAssigned,
		TaskID:       t.ID,
		TaskTitle:    t.Title,
		ProjectTitle: p.Title,
		ActorID:      caller.ID,
		AssigneeID:   t.AssignedTo,
	}, now)
	err = s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.taskRepo.WithTx(tx).Create(ctx, t); err != nil {
			return err
		}
		nrepo := s.notificationRepo.WithTx(tx)
		for _, n := range notifs {
			if err := nrepo.Create(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.taskRepo.GetByID(ctx, t.ID)
}

// Get returns the task if the caller may see it. Tasks outside the caller's
// projects are reported as not found.
func (s *TaskService) Get(ctx context.Context, sess security.Session, taskID string) (*domain.Task, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	t, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NotFound("task not found")
	}
	isMember, err := s.projectRepo.IsMember(ctx, t.ProjectID, caller.ID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:            string(caller.Role),
		Approved:        caller.IsApproved(),
		Action:          authz.ActionRead,
		Resource:        authz.ResourceTask,
		IsProjectMember: isMember,
	})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.NotFound("task not found")
	}
	return t, nil
}

// List returns all tasks for admins and tasks in the caller's projects for members.
func (s *TaskService) List(ctx context.Context, sess security.Session) ([]*domain.Task, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if caller.Role == userdomain.RoleAdmin {
		return s.taskRepo.ListAll(ctx)
	}
	if !caller.IsApproved() {
		return nil, apperror.Forbidden("account pending approval")
	}
	return s.taskRepo.ListForUser(ctx, caller.ID)
}

// ListByProject returns the project's tasks if the caller may see the project.
func (s *TaskService) ListByProject(ctx context.Context, sess security.Session, projectID string) ([]*domain.Task, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.requireProjectVisible(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByProject(ctx, projectID)
}

// Mine returns the tasks assigned to the caller.
func (s *TaskService) Mine(ctx context.Context, sess security.Session) ([]*domain.Task, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !caller.IsApproved() {
		return nil, apperror.Forbidden("account pending approval")
	}
	return s.taskRepo.ListByAssignee(ctx, caller.ID)
}

// Update replaces the task's fields. Admin only. A reassignment is validated
// against the project's membership before anything is written, so an invalid
// assignee leaves the stored assignment untouched.
func (s *TaskService) Update(ctx context.Context, sess security.Session, taskID string, in UpdateTaskInput) (*domain.Task, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, caller, authz.ActionUpdate); err != nil {
		return nil, err
	}
	t, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NotFound("task not found")
	}
	p, err := s.projectRepo.GetByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("project not found")
	}
	if in.AssignedTo != "" && !p.HasMember(in.AssignedTo) {
		return nil, apperror.Validation("assignee must be a member of the project")
	}
	reassigned := in.AssignedTo != "" && in.AssignedTo != t.AssignedTo
	statusChanged := in.Status != t.Status
	t.Title = strings.TrimSpace(in.Title)
	t.Description = in.Description
	t.AssignedTo = in.AssignedTo
	t.Status = in.Status
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	now := time.Now().UTC()
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	var created []*notificationdomain.Notification
	if reassigned {
		created = append(created, notification.ForTaskEvent(notification.TaskEvent{
			Kind:         notification.TaskAssigned,
			TaskID:       t.ID,
			TaskTitle:    t.Title,
			ProjectTitle: p.Title,
			ActorID:      caller.ID,
			AssigneeID:   t.AssignedTo,
		}, now)...)
	}
	if statusChanged {
		created = append(created, notification.ForTaskEvent(notification.TaskEvent{
			Kind:         notification.TaskStatusChanged,
			TaskID:       t.ID,
			TaskTitle:    t.Title,
			ProjectTitle: p.Title,
			ActorID:      caller.ID,
			AssigneeID:   t.AssignedTo,
			OwnerID:      p.OwnerID,
			NewStatus:    string(t.Status),
		}, now)...)
	}
	err = s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.taskRepo.WithTx(tx).Update(ctx, t); err != nil {
			return err
		}
		nrepo := s.notificationRepo.WithTx(tx)
		for _, n := range created {
			if err := nrepo.Create(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.taskRepo.GetByID(ctx, t.ID)
}

// UpdateStatus moves the task to status. Admins may move any task; a member
// must be the assignee. Any of the three states may follow any other. Setting
// the current status again is a no-op and produces no notification. The write
// and its notifications commit together.
func (s *TaskService) UpdateStatus(ctx context.Context, sess security.Session, taskID string, status domain.Status) (*domain.Task, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !domain.ValidStatus(status) {
		return nil, apperror.Validation("status must be TODO, IN_PROGRESS, or DONE")
	}
	t, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NotFound("task not found")
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:           string(caller.Role),
		Approved:       caller.IsApproved(),
		Action:         authz.ActionUpdateStatus,
		Resource:       authz.ResourceTask,
		IsTaskAssignee: t.AssignedTo == caller.ID,
	})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.Forbidden("only the assignee or an admin may move this task")
	}
	if t.Status == status {
		return t, nil
	}
	p, err := s.projectRepo.GetByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("project not found")
	}
	now := time.Now().UTC()
	notifs := notification.ForTaskEvent(notification.TaskEvent{
		Kind:         notification.TaskStatusChanged,
		TaskID:       t.ID,
		TaskTitle:    t.Title,
		ProjectTitle: p.Title,
		ActorID:      caller.ID,
		AssigneeID:   t.AssignedTo,
		OwnerID:      p.OwnerID,
		NewStatus:    string(status),
	}, now)
	err = s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.taskRepo.WithTx(tx).UpdateStatus(ctx, t.ID, status, now); err != nil {
			return err
		}
		nrepo := s.notificationRepo.WithTx(tx)
		for _, n := range notifs {
			if err := nrepo.Create(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.Status = status
	t.UpdatedAt = now
	return t, nil
}

// Delete removes the task and its notifications in one transaction. Admin only.
func (s *TaskService) Delete(ctx context.Context, sess security.Session, taskID string) error {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, caller, authz.ActionDelete); err != nil {
		return err
	}
	t, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperror.NotFound("task not found")
	}
	return s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.notificationRepo.WithTx(tx).DeleteBySubject(ctx, taskID); err != nil {
			return err
		}
		return s.taskRepo.WithTx(tx).Delete(ctx, taskID)
	})
}

// Gantt returns the caller's timeline. Each entry spans from the project's
// start date to the task's due date; tasks without a due date are skipped.
// Admins see every task, members only tasks in their projects.
func (s *TaskService) Gantt(ctx context.Context, sess security.Session) ([]GanttEntry, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	all := caller.Role == userdomain.RoleAdmin
	if !all && !caller.IsApproved() {
		return nil, apperror.Forbidden("account pending approval")
	}
	rows, err := s.taskRepo.ListGantt(ctx, caller.ID, all)
	if err != nil {
		return nil, err
	}
	var out []GanttEntry
	for _, row := range rows {
		if row.Task.DueDate.IsZero() {
			continue
		}
		start := row.ProjectStart
		end := row.Task.DueDate
		if end.Before(start) {
			start = end
		}
		out = append(out, GanttEntry{Task: row.Task, Start: start, End: end})
	}
	return out, nil
}

// Dashboard aggregates the caller's visible projects and tasks into counters.
func (s *TaskService) Dashboard(ctx context.Context, sess security.Session) (*DashboardStats, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	var ps []*projectdomain.Project
	var tasks []*domain.Task
	if caller.Role == userdomain.RoleAdmin {
		ps, err = s.projectRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		tasks, err = s.taskRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		if !caller.IsApproved() {
			return nil, apperror.Forbidden("account pending approval")
		}
		ps, err = s.projectRepo.ListForUser(ctx, caller.ID)
		if err != nil {
			return nil, err
		}
		tasks, err = s.taskRepo.ListForUser(ctx, caller.ID)
		if err != nil {
			return nil, err
		}
	}
	stats := &DashboardStats{Projects: len(ps), Tasks: len(tasks)}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	total := make(map[string]int, len(ps))
	done := make(map[string]int, len(ps))
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusTodo:
			stats.TasksTodo++
		case domain.StatusInProgress:
			stats.TasksInProgress++
		case domain.StatusDone:
			stats.TasksDone++
			done[t.ProjectID]++
		}
		total[t.ProjectID]++
		if !t.DueDate.IsZero() && t.DueDate.Before(today) && t.Status != domain.StatusDone {
			stats.TasksOverdue++
		}
	}
	stats.Completion = make([]ProjectCompletion, 0, len(ps))
	for _, p := range ps {
		pc := ProjectCompletion{ProjectID: p.ID, Title: p.Title}
		if n := total[p.ID]; n > 0 {
			pc.Percent = float64(done[p.ID]) / float64(n)
		}
		stats.Completion = append(stats.Completion, pc)
	}
	return stats, nil
}

func (s *TaskService) requireCaller(ctx context.Context, sess security.Session) (*userdomain.User, error) {
	user, err := s.userReader.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated("account no longer exists")
	}
	return user, nil
}

func (s *TaskService) requireAdmin(ctx context.Context, caller *userdomain.User, action string) error {
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:     string(caller.Role),
		Approved: caller.IsApproved(),
		Action:   action,
		Resource: authz.ResourceTask,
	})
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.Forbidden("admin role required")
	}
	return nil
}

// requireProjectVisible reports NotFound when the project is absent or hidden
// from the caller.
func (s *TaskService) requireProjectVisible(ctx context.Context, caller *userdomain.User, projectID string) error {
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("project not found")
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:            string(caller.Role),
		Approved:        caller.IsApproved(),
		Action:          authz.ActionRead,
		Resource:        authz.ResourceProject,
		IsProjectMember: p.HasMember(caller.ID),
	})
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.NotFound("project not found")
	}
	return nil
}
