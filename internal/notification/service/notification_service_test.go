package service

import (
	"context"
	"sync"
	"testing"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/authz"
	"project-management/backend/internal/notification/domain"
	"project-management/backend/internal/security"
	userdomain "project-management/backend/internal/user/domain"
)

type memUsers struct {
	m map[string]*userdomain.User
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return r.m[id], nil
}

type memNotifications struct {
	mu sync.Mutex
	m  map[string]*domain.Notification
}

func (r *memNotifications) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[id], nil
}

func (r *memNotifications) ListByRecipient(ctx context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, n := range r.m {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	all, _ := r.ListByRecipient(ctx, userID)
	count := 0
	for _, n := range all {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotifications) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.m[id]; ok {
		n.IsRead = true
	}
	return nil
}

func newTestService(t *testing.T) (*NotificationService, *memNotifications) {
	t.Helper()
	evaluator, err := authz.NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	users := &memUsers{m: map[string]*userdomain.User{
		"a": {ID: "a", Username: "a", Role: userdomain.RoleMember, ApprovalState: userdomain.ApprovalApproved},
		"b": {ID: "b", Username: "b", Role: userdomain.RoleMember, ApprovalState: userdomain.ApprovalApproved},
	}}
	repo := &memNotifications{m: make(map[string]*domain.Notification)}
	return NewNotificationService(repo, users, evaluator), repo
}

func sessionFor(id string) security.Session {
	return security.Session{UserID: id, Role: "MEMBER"}
}

func TestNotificationService_ListAndUnreadCount(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	repo.m["n1"] = &domain.Notification{ID: "n1", RecipientID: "a", Type: domain.TypeTask, SubjectID: "t1", Title: "x"}
	repo.m["n2"] = &domain.Notification{ID: "n2", RecipientID: "a", Type: domain.TypeTask, SubjectID: "t2", Title: "y", IsRead: true}
	repo.m["n3"] = &domain.Notification{ID: "n3", RecipientID: "b", Type: domain.TypeTask, SubjectID: "t1", Title: "z"}

	ns, err := svc.List(ctx, sessionFor("a"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ns) != 2 {
		t.Errorf("a sees %d notifications, want 2", len(ns))
	}
	count, err := svc.UnreadCount(ctx, sessionFor("a"))
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	repo.m["n1"] = &domain.Notification{ID: "n1", RecipientID: "a", Type: domain.TypeTask, SubjectID: "t1", Title: "x"}

	n, err := svc.MarkRead(ctx, sessionFor("a"), "n1")
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !n.IsRead {
		t.Error("notification must be read after MarkRead")
	}
	// marking again is a no-op
	if _, err := svc.MarkRead(ctx, sessionFor("a"), "n1"); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
}

func TestNotificationService_MarkReadForeignForbidden(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	repo.m["n1"] = &domain.Notification{ID: "n1", RecipientID: "a", Type: domain.TypeTask, SubjectID: "t1", Title: "x"}

	_, err := svc.MarkRead(ctx, sessionFor("b"), "n1")
	if apperror.KindOf(err) != apperror.KindForbidden {
		t.Errorf("foreign MarkRead: kind = %v, want forbidden", apperror.KindOf(err))
	}
	if repo.m["n1"].IsRead {
		t.Error("foreign MarkRead must not flip the flag")
	}
}

func TestNotificationService_MarkReadMissing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.MarkRead(context.Background(), sessionFor("a"), "missing")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("missing: kind = %v, want not found", apperror.KindOf(err))
	}
}
