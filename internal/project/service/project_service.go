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
	notificationrepo "project-management/backend/internal/notification/repository"
	"project-management/backend/internal/project/domain"
	projectrepo "project-management/backend/internal/project/repository"
	"project-management/backend/internal/security"
	taskrepo "project-management/backend/internal/task/repository"
	userdomain "project-management/backend/internal/user/domain"
)

// UserReader is the minimal user lookup needed to validate members and callers.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// CreateProjectInput carries the fields for project creation.
type CreateProjectInput struct {
	Title       string
	Description string
	Status      domain.Status
	StartDate   time.Time
	Deadline    time.Time
	MemberIDs   []string
}

// UpdateProjectInput carries the fields for a project update. All fields are
// replaced; the membership set is managed separately.
type UpdateProjectInput struct {
	Title       string
	Description string
	Status      domain.Status
	StartDate   time.Time
	Deadline    time.Time
}

// ProjectService implements project CRUD and member management. Mutations are
// admin only; reads are scoped to the caller's membership.
type ProjectService struct {
	atomic           db.AtomicFunc
	projectRepo      projectrepo.Repository
	taskRepo         taskrepo.Repository
	notificationRepo notificationrepo.Repository
	userReader       UserReader
	authz            *authz.Evaluator
}

// NewProjectService returns a ProjectService with the given dependencies.
func NewProjectService(
	atomic db.AtomicFunc,
	projectRepo projectrepo.Repository,
	taskRepo taskrepo.Repository,
	notificationRepo notificationrepo.Repository,
	userReader UserReader,
	evaluator *authz.Evaluator,
) *ProjectService {
	return &ProjectService{
		atomic:           atomic,
		projectRepo:      projectRepo,
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
		userReader:       userReader,
		authz:            evaluator,
	}
}

// Create creates a project owned by the caller. Admin only. Every member ID
// must refer to an approved user; the owner is implicit and never stored as an
// explicit member. Added members are notified in the same transaction.
func (s *ProjectService) Create(ctx context.Context, sess security.Session, in CreateProjectInput) (*domain.Project, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, authz.ActionCreate, authz.Input{}); err != nil {
		return nil, err
	}
	memberIDs, err := s.validateMembers(ctx, in.MemberIDs, caller.ID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &domain.Project{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		OwnerID:     caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = domain.StatusTodo
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	notifs := notification.ForProjectEvent(notification.ProjectEvent{
		Kind:         notification.ProjectMemberAdded,
		ProjectID:    p.ID,
		ProjectTitle: p.Title,
		ActorID:      caller.ID,
		MemberIDs:    memberIDs,
	}, now)
	err = s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.projectRepo.WithTx(tx).Create(ctx, p, memberIDs); err != nil {
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
	return s.projectRepo.GetByID(ctx, p.ID)
}

// Get returns the project if the caller may see it. A project outside the
// caller's membership is reported as not found, not forbidden.
func (s *ProjectService) Get(ctx context.Context, sess security.Session, projectID string) (*domain.Project, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("project not found")
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:            string(caller.Role),
		Approved:        caller.IsApproved(),
		Action:          authz.ActionRead,
		Resource:        authz.ResourceProject,
		IsProjectMember: p.HasMember(caller.ID),
	})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.NotFound("project not found")
	}
	return p, nil
}

// List returns all projects for admins and the caller's projects for members.
func (s *ProjectService) List(ctx context.Context, sess security.Session) ([]*domain.Project, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if caller.Role == userdomain.RoleAdmin {
		return s.projectRepo.ListAll(ctx)
	}
	if !caller.IsApproved() {
		return nil, apperror.Forbidden("account pending approval")
	}
	return s.projectRepo.ListForUser(ctx, caller.ID)
}

// Update replaces the project's own fields. Admin only. Members are notified
// in the same transaction as the write.
func (s *ProjectService) Update(ctx context.Context, sess security.Session, projectID string, in UpdateProjectInput) (*domain.Project, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, authz.ActionUpdate, authz.Input{}); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("project not found")
	}
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.Status = in.Status
	p.StartDate = in.StartDate
	p.Deadline = in.Deadline
	now := time.Now().UTC()
	p.UpdatedAt = now
	if err := p.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	recipients := []string{p.OwnerID}
	for _, m := range p.Members {
		recipients = append(recipients, m.ID)
	}
	notifs := notification.ForProjectEvent(notification.ProjectEvent{
		Kind:         notification.ProjectUpdated,
		ProjectID:    p.ID,
		ProjectTitle: p.Title,
		ActorID:      caller.ID,
		MemberIDs:    recipients,
	}, now)
	err = s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.projectRepo.WithTx(tx).Update(ctx, p); err != nil {
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
	return s.projectRepo.GetByID(ctx, p.ID)
}

// Delete removes the project and, in the same transaction, its tasks and every
// notification that refers to the project or those tasks. Admin only.
func (s *ProjectService) Delete(ctx context.Context, sess security.Session, projectID string) error {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, caller, authz.ActionDelete, authz.Input{}); err != nil {
		return err
	}
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("project not found")
	}
	return s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.notificationRepo.WithTx(tx).DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := s.taskRepo.WithTx(tx).DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		return s.projectRepo.WithTx(tx).Delete(ctx, projectID)
	})
}

// AddMember adds an approved user to the project and notifies them. Admin
// only. Adding the owner or an existing member is a no-op.
func (s *ProjectService) AddMember(ctx context.Context, sess security.Session, projectID, userID string) (*domain.Project, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, authz.ActionUpdate, authz.Input{}); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("project not found")
	}
	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsApproved() {
		return nil, apperror.Validation("member must be an approved user")
	}
	if p.HasMember(userID) {
		return p, nil
	}
	now := time.Now().UTC()
	notifs := notification.ForProjectEvent(notification.ProjectEvent{
		Kind:         notification.ProjectMemberAdded,
		ProjectID:    p.ID,
		ProjectTitle: p.Title,
		ActorID:      caller.ID,
		MemberIDs:    []string{userID},
	}, now)
	err = s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.projectRepo.WithTx(tx).AddMember(ctx, projectID, userID, now); err != nil {
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
	return s.projectRepo.GetByID(ctx, projectID)
}

// RemoveMember removes a user from the project and, in the same transaction,
// unassigns their tasks in it. Admin only. The owner cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, sess security.Session, projectID, userID string) (*domain.Project, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, authz.ActionUpdate, authz.Input{}); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("project not found")
	}
	if userID == p.OwnerID {
		return nil, apperror.Validation("cannot remove the project owner")
	}
	err = s.atomic(ctx, func(tx *sql.Tx) error {
		if err := s.projectRepo.WithTx(tx).RemoveMember(ctx, projectID, userID); err != nil {
			return err
		}
		return s.taskRepo.WithTx(tx).UnassignUser(ctx, userID, projectID)
	})
	if err != nil {
		return nil, err
	}
	return s.projectRepo.GetByID(ctx, projectID)
}

// validateMembers checks every ID refers to an approved user. The owner is
// dropped from the result rather than rejected.
func (s *ProjectService) validateMembers(ctx context.Context, ids []string, ownerID string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		if id == ownerID || seen[id] {
			continue
		}
		seen[id] = true
		u, err := s.userReader.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil || !u.IsApproved() {
			return nil, apperror.Validation("member must be an approved user")
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *ProjectService) requireCaller(ctx context.Context, sess security.Session) (*userdomain.User, error) {
	user, err := s.userReader.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated("account no longer exists")
	}
	return user, nil
}

// authorize checks an admin-gated project mutation. extra carries any
// membership facts already resolved.
func (s *ProjectService) authorize(ctx context.Context, caller *userdomain.User, action string, extra authz.Input) error {
	extra.Role = string(caller.Role)
	extra.Approved = caller.IsApproved()
	extra.Action = action
	extra.Resource = authz.ResourceProject
	allowed, err := s.authz.Allow(ctx, extra)
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.Forbidden("admin role required")
	}
	return nil
}
