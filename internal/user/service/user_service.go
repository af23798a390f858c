package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/authz"
	"project-management/backend/internal/db"
	notificationrepo "project-management/backend/internal/notification/repository"
	projectrepo "project-management/backend/internal/project/repository"
	"project-management/backend/internal/security"
	taskrepo "project-management/backend/internal/task/repository"
	"project-management/backend/internal/user/domain"
	userrepo "project-management/backend/internal/user/repository"
)

// UserService implements the registration approval pipeline and account
// management. Approval and rejection are admin-only; rejection deletes the
// pending record outright.
type UserService struct {
	atomic           db.AtomicFunc
	userRepo         userrepo.Repository
	projectRepo      projectrepo.Repository
	taskRepo         taskrepo.Repository
	notificationRepo notificationrepo.Repository
	hasher           *security.Hasher
	authz            *authz.Evaluator
}

// NewUserService returns a UserService with the given dependencies. atomic
// wraps the transaction that makes an account deletion cascade atomic.
func NewUserService(
	atomic db.AtomicFunc,
	userRepo userrepo.Repository,
	projectRepo projectrepo.Repository,
	taskRepo taskrepo.Repository,
	notificationRepo notificationrepo.Repository,
	hasher *security.Hasher,
	evaluator *authz.Evaluator,
) *UserService {
	return &UserService{
		atomic:           atomic,
		userRepo:         userRepo,
		projectRepo:      projectRepo,
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
		hasher:           hasher,
		authz:            evaluator,
	}
}

// Me returns the session user's own record.
func (s *UserService) Me(ctx context.Context, sess security.Session) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated("account no longer exists")
	}
	return user, nil
}

// ListPending returns accounts awaiting approval. Admin only.
func (s *UserService) ListPending(ctx context.Context, sess security.Session) ([]*domain.User, error) {
	if err := s.requireAdmin(ctx, sess, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.userRepo.ListByApproval(ctx, domain.ApprovalPending)
}

// ListTeamMembers returns all approved users, for assignment pickers and
// member management. Any approved user may call it.
func (s *UserService) ListTeamMembers(ctx context.Context, sess security.Session) ([]*domain.User, error) {
	if _, err := s.requireApproved(ctx, sess); err != nil {
		return nil, err
	}
	return s.userRepo.ListApprovedMembers(ctx)
}

// Approve moves a pending account to APPROVED. Admin only. Only a PENDING
// account can be approved; anything else reads as not found.
func (s *UserService) Approve(ctx context.Context, sess security.Session, userID string) (*domain.User, error) {
	if err := s.requireAdmin(ctx, sess, authz.ActionUpdate); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ApprovalState != domain.ApprovalPending {
		return nil, apperror.NotFound("no pending account")
	}
	now := time.Now().UTC()
	if err := s.userRepo.UpdateApproval(ctx, userID, domain.ApprovalApproved, now); err != nil {
		return nil, err
	}
	user.ApprovalState = domain.ApprovalApproved
	user.UpdatedAt = now
	return user, nil
}

// Reject deletes a pending account. Admin only. Rejecting an approved account
// is refused; use Delete for that.
func (s *UserService) Reject(ctx context.Context, sess security.Session, userID string) error {
	if err := s.requireAdmin(ctx, sess, authz.ActionDelete); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("user not found")
	}
	if user.IsApproved() {
		return apperror.Validation("account is already approved")
	}
	return s.userRepo.Delete(ctx, userID)
}

// Delete removes an account and everything that hangs off it in one
// transaction: owned projects with their tasks and notifications, remaining
// task assignments, memberships, and the user's own notifications. Admin only;
// admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, sess security.Session, userID string) error {
	if err := s.requireAdmin(ctx, sess, authz.ActionDelete); err != nil {
		return err
	}
	if userID == sess.UserID {
		return apperror.Validation("cannot delete your own account")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("user not found")
	}
	ownedIDs, err := s.projectRepo.ListOwnedIDs(ctx, userID)
	if err != nil {
		return err
	}

	return s.atomic(ctx, func(tx *sql.Tx) error {
		users := s.userRepo.WithTx(tx)
		projects := s.projectRepo.WithTx(tx)
		tasks := s.taskRepo.WithTx(tx)
		notifications := s.notificationRepo.WithTx(tx)

		for _, pid := range ownedIDs {
			if err := notifications.DeleteByProject(ctx, pid); err != nil {
				return err
			}
			if err := tasks.DeleteByProject(ctx, pid); err != nil {
				return err
			}
			if err := projects.Delete(ctx, pid); err != nil {
				return err
			}
		}
		if err := tasks.UnassignUser(ctx, userID, ""); err != nil {
			return err
		}
		if err := projects.RemoveAllMemberships(ctx, userID); err != nil {
			return err
		}
		if err := notifications.DeleteByRecipient(ctx, userID); err != nil {
			return err
		}
		return users.Delete(ctx, userID)
	})
}

// UpdateEmail changes the session user's own email address.
func (s *UserService) UpdateEmail(ctx context.Context, sess security.Session, email string) (*domain.User, error) {
	user, err := s.requireApproved(ctx, sess)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, apperror.Conflict("email already registered")
		}
	}
	now := time.Now().UTC()
	if err := s.userRepo.UpdateEmail(ctx, user.ID, email, now); err != nil {
		if errors.Is(err, userrepo.ErrDuplicate) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, err
	}
	user.Email = email
	user.UpdatedAt = now
	return user, nil
}

// ChangePassword verifies the current password and stores a hash of the new one.
func (s *UserService) ChangePassword(ctx context.Context, sess security.Session, current, next string) error {
	user, err := s.requireApproved(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(current)); err != nil {
		return apperror.Unauthenticated("current password is incorrect")
	}
	if err := security.ValidatePassword(next); err != nil {
		return apperror.Validation(err.Error())
	}
	hashed, err := s.hasher.Hash([]byte(next))
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hashed, time.Now().UTC())
}

// requireApproved loads the session user and refuses unapproved accounts.
func (s *UserService) requireApproved(ctx context.Context, sess security.Session) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated("account no longer exists")
	}
	if !user.IsApproved() {
		return nil, apperror.Forbidden("account pending approval")
	}
	return user, nil
}

func (s *UserService) requireAdmin(ctx context.Context, sess security.Session, action string) error {
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.Unauthenticated("account no longer exists")
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:     string(user.Role),
		Approved: user.IsApproved(),
		Action:   action,
		Resource: authz.ResourceUser,
	})
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.Forbidden("admin role required")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.Validation("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return apperror.Validation("invalid email format")
	}
	return nil
}
