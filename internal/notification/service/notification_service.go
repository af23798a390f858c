package service

import (
	"context"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/authz"
	"project-management/backend/internal/notification/domain"
	"project-management/backend/internal/security"
	userdomain "project-management/backend/internal/user/domain"
)

// UserReader is the minimal user lookup needed to resolve callers.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// NotificationRepo is the read-and-mark surface the service needs; dispatch
// writes happen inside the emitting services' transactions.
type NotificationRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, userID string) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationService serves each user's own notification feed.
type NotificationService struct {
	repo       NotificationRepo
	userReader UserReader
	authz      *authz.Evaluator
}

// NewNotificationService returns a NotificationService with the given dependencies.
func NewNotificationService(repo NotificationRepo, userReader UserReader, evaluator *authz.Evaluator) *NotificationService {
	return &NotificationService{repo: repo, userReader: userReader, authz: evaluator}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, sess security.Session) ([]*domain.Notification, error) {
	if _, err := s.requireCaller(ctx, sess); err != nil {
		return nil, err
	}
	return s.repo.ListByRecipient(ctx, sess.UserID)
}

// UnreadCount returns the caller's number of unread notifications. The count
// is always derived from the rows, never stored.
func (s *NotificationService) UnreadCount(ctx context.Context, sess security.Session) (int, error) {
	if _, err := s.requireCaller(ctx, sess); err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, sess.UserID)
}

// MarkRead marks one of the caller's notifications as read. Marking an already
// read notification is a no-op. Another user's notification is refused.
func (s *NotificationService) MarkRead(ctx context.Context, sess security.Session, id string) (*domain.Notification, error) {
	caller, err := s.requireCaller(ctx, sess)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperror.NotFound("notification not found")
	}
	allowed, err := s.authz.Allow(ctx, authz.Input{
		Role:     string(caller.Role),
		Approved: caller.IsApproved(),
		Action:   authz.ActionUpdate,
		Resource: authz.ResourceNotification,
		IsSelf:   n.RecipientID == caller.ID,
	})
	if err != nil {
		return nil, err
	}
	if !allowed || n.RecipientID != caller.ID {
		return nil, apperror.Forbidden("not your notification")
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.IsRead = true
	return n, nil
}

func (s *NotificationService) requireCaller(ctx context.Context, sess security.Session) (*userdomain.User, error) {
	user, err := s.userReader.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated("account no longer exists")
	}
	return user, nil
}
