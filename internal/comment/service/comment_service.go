package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/authz"
	"project-management/backend/internal/comment/domain"
	commentrepo "project-management/backend/internal/comment/repository"
	"project-management/backend/internal/security"
	taskdomain "project-management/backend/internal/task/domain"
	userdomain "project-management/backend/internal/user/domain"
)

// UserReader is the minimal user lookup needed to resolve callers.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// TaskReader resolves the task a comment thread hangs off.
type TaskReader interface {
	GetByID(ctx context.Context, id string) (*taskdomain.Task, error)
}

// MembershipChecker reports project membership for visibility checks.
type MembershipChecker interface {
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}

// CommentService implements task comment threads. Any project member may read
// and write; deletion is limited to the author and admins.
type CommentService struct {
	repo        commentrepo.Repository
	taskReader  TaskReader
	memberships MembershipChecker
	userReader  UserReader
	authz       *authz.Evaluator
}

// NewCommentService returns a CommentService with the given dependencies.
func NewCommentService(
	repo commentrepo.Repository,
	taskReader TaskReader,
	memberships MembershipChecker,
	userReader UserReader,
	evaluator *authz.Evaluator,
) *CommentService {
	return &CommentService{
		repo:        repo,
		taskReader:  taskReader,
		memberships: memberships,
		userReader:  userReader,
		authz:       evaluator,
	}
}

// ListByTask returns the task's comments, oldest first, if the caller can see
// the task. A hidden task reads as not found.
func (s *CommentService) ListByTask(ctx context.Context, sess security.Session, taskID string) ([]*domain.Comment, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(ctx, caller, taskID, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}

// Create adds a comment to the task authored by the caller.
func (s *CommentService) Create(ctx context.Context, sess security.Session, taskID, content string) (*domain.Comment, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(ctx, caller, taskID, authz.ActionCreate); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		AuthorID:  caller.ID,
		Content:   strings.TrimSpace(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, c.ID)
}

// Delete removes a comment. The author may delete their own; admins may delete any.
func (s *CommentService) Delete(ctx context.Context, sess security.Session, commentID string) error {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return err
	}
	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperror.NotFound("comment not found")
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:     string(caller.Role),
		Approved: caller.IsApproved(),
		Action:   authz.ActionDelete,
		Resource: authz.ResourceComment,
		IsSelf:   c.AuthorID == caller.ID,
	})
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.Forbidden("only the author or an admin may delete a comment")
	}
	return s.repo.Delete(ctx, commentID)
}

// requireTaskAccess resolves the comment action against the task's project
// membership. Hidden tasks read as not found rather than forbidden.
func (s *CommentService) requireTaskAccess(ctx context.Context, caller *userdomain.User, taskID, action string) error {
	t, err := s.taskReader.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperror.NotFound("task not found")
	}
	isMember, err := s.memberships.IsMember(ctx, t.ProjectID, caller.ID)
	if err != nil {
		return err
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:            string(caller.Role),
		Approved:        caller.IsApproved(),
		Action:          action,
		Resource:        authz.ResourceComment,
		IsProjectMember: isMember,
	})
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.NotFound("task not found")
	}
	return nil
}

func (s *CommentService) requireCaller(ctx context.Context, sess security.Session) (*userdomain.User, error) {
	user, err := s.userReader.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated("account no longer exists")
	}
	return user, nil
}
