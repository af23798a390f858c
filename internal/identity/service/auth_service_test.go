package service

import (
	"context"
	"sync"
	"testing"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/security"
	userdomain "project-management/backend/internal/user/domain"
	userrepo "project-management/backend/internal/user/repository"
)

type memUserRepo struct {
	mu         sync.Mutex
	byID       map[string]*userdomain.User
	byUsername map[string]*userdomain.User
	byEmail    map[string]*userdomain.User
	createErr  error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:       make(map[string]*userdomain.User),
		byUsername: make(map[string]*userdomain.User),
		byEmail:    make(map[string]*userdomain.User),
	}
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUsername[username], nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) approve(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byUsername[username]; ok {
		u.ApprovalState = userdomain.ApprovalApproved
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	return NewAuthService(repo, security.NewHasher(4), tokens), repo
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "password1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected user id")
	}
	if u.Role != userdomain.RoleMember {
		t.Errorf("Role = %s, want MEMBER", u.Role)
	}
	if u.ApprovalState != userdomain.ApprovalPending {
		t.Errorf("ApprovalState = %s, want PENDING", u.ApprovalState)
	}
	if u.PasswordHash == "password1" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice", "alice@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Register(ctx, "alice", "other@example.com", "password1")
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("duplicate username: kind = %v, want conflict", apperror.KindOf(err))
	}
	_, err = svc.Register(ctx, "alice2", "alice@example.com", "password1")
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("duplicate email: kind = %v, want conflict", apperror.KindOf(err))
	}
}

func TestAuthService_RegisterInsertCollision(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	// a concurrent registration can slip in between the existence checks and
	// the insert; the constraint violation must still be a conflict
	repo.createErr = userrepo.ErrDuplicate
	_, err := svc.Register(ctx, "bob", "bob@example.com", "password1")
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("insert collision: kind = %v, want conflict", apperror.KindOf(err))
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@example.com", "password1"},
		{"bad email", "bob", "not-an-email", "password1"},
		{"short password", "bob", "b@example.com", "pw1"},
		{"no digit", "bob", "b@example.com", "passwords"},
		{"no letter", "bob", "b@example.com", "12345678"},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
		if apperror.KindOf(err) != apperror.KindValidation {
			t.Errorf("%s: kind = %v, want validation", tc.name, apperror.KindOf(err))
		}
	}
}

func TestAuthService_LoginPendingForbidden(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice", "alice@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(ctx, "alice", "password1")
	if apperror.KindOf(err) != apperror.KindForbidden {
		t.Errorf("pending login: kind = %v, want forbidden", apperror.KindOf(err))
	}
}

func TestAuthService_LoginApproved(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice", "alice@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.approve("alice")

	res, err := svc.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if res.User.Username != "alice" {
		t.Errorf("User.Username = %s, want alice", res.User.Username)
	}
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice", "alice@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.approve("alice")

	_, err := svc.Login(ctx, "alice", "wrong-password")
	if apperror.KindOf(err) != apperror.KindUnauthenticated {
		t.Errorf("wrong password: kind = %v, want unauthenticated", apperror.KindOf(err))
	}
	_, err = svc.Login(ctx, "nobody", "password1")
	if apperror.KindOf(err) != apperror.KindUnauthenticated {
		t.Errorf("unknown user: kind = %v, want unauthenticated", apperror.KindOf(err))
	}
}
