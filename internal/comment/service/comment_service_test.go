package service

import (
	"context"
	"sync"
	"testing"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/authz"
	"project-management/backend/internal/comment/domain"
	"project-management/backend/internal/security"
	taskdomain "project-management/backend/internal/task/domain"
	userdomain "project-management/backend/internal/user/domain"
)

type memUsers struct {
	m map[string]*userdomain.User
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return r.m[id], nil
}

type memTasks struct {
	m map[string]*taskdomain.Task
}

func (r *memTasks) GetByID(ctx context.Context, id string) (*taskdomain.Task, error) {
	return r.m[id], nil
}

type memMemberships struct {
	m map[string][]string // projectID -> user IDs incl. owner
}

func (r *memMemberships) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	for _, uid := range r.m[projectID] {
		if uid == userID {
			return true, nil
		}
	}
	return false, nil
}

type memComments struct {
	mu sync.Mutex
	m  map[string]*domain.Comment
}

func (r *memComments) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[id], nil
}

func (r *memComments) Create(ctx context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[c.ID] = c
	return nil
}

func (r *memComments) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.m {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memComments) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

func newTestService(t *testing.T) (*CommentService, *memComments) {
	t.Helper()
	evaluator, err := authz.NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	users := &memUsers{m: map[string]*userdomain.User{
		"admin":    {ID: "admin", Username: "admin", Role: userdomain.RoleAdmin, ApprovalState: userdomain.ApprovalApproved},
		"a":        {ID: "a", Username: "a", Role: userdomain.RoleMember, ApprovalState: userdomain.ApprovalApproved},
		"b":        {ID: "b", Username: "b", Role: userdomain.RoleMember, ApprovalState: userdomain.ApprovalApproved},
		"outsider": {ID: "outsider", Username: "outsider", Role: userdomain.RoleMember, ApprovalState: userdomain.ApprovalApproved},
	}}
	tasks := &memTasks{m: map[string]*taskdomain.Task{
		"t1": {ID: "t1", Title: "t1", ProjectID: "p1", Status: taskdomain.StatusTodo, Priority: taskdomain.PriorityLow},
	}}
	memberships := &memMemberships{m: map[string][]string{"p1": {"admin", "a", "b"}}}
	comments := &memComments{m: make(map[string]*domain.Comment)}
	return NewCommentService(comments, tasks, memberships, users, evaluator), comments
}

func sessionFor(id, role string) security.Session {
	return security.Session{UserID: id, Role: role}
}

func TestCommentService_CreateAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, sessionFor("a", "MEMBER"), "t1", "looks good")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.AuthorID != "a" {
		t.Errorf("AuthorID = %s, want a", c.AuthorID)
	}
	cs, err := svc.ListByTask(ctx, sessionFor("b", "MEMBER"), "t1")
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(cs) != 1 {
		t.Errorf("got %d comments, want 1", len(cs))
	}
}

func TestCommentService_OutsiderSeesNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListByTask(ctx, sessionFor("outsider", "MEMBER"), "t1")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("outsider list: kind = %v, want not found", apperror.KindOf(err))
	}
	_, err = svc.Create(ctx, sessionFor("outsider", "MEMBER"), "t1", "hi")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("outsider create: kind = %v, want not found", apperror.KindOf(err))
	}
}

func TestCommentService_CreateEmptyContent(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), sessionFor("a", "MEMBER"), "t1", "   ")
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("empty content: kind = %v, want validation", apperror.KindOf(err))
	}
}

func TestCommentService_DeleteOwnership(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, sessionFor("a", "MEMBER"), "t1", "mine")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// another member cannot delete it
	if err := svc.Delete(ctx, sessionFor("b", "MEMBER"), c.ID); apperror.KindOf(err) != apperror.KindForbidden {
		t.Errorf("foreign delete: kind = %v, want forbidden", apperror.KindOf(err))
	}
	// the author can
	if err := svc.Delete(ctx, sessionFor("a", "MEMBER"), c.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, ok := repo.m[c.ID]; ok {
		t.Error("comment must be gone")
	}
}

func TestCommentService_AdminDeletesAny(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, sessionFor("a", "MEMBER"), "t1", "mine")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, sessionFor("admin", "ADMIN"), c.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}
