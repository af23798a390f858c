package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/security"
	userdomain "project-management/backend/internal/user/domain"
	userrepo "project-management/backend/internal/user/repository"
)

// AuthResult holds the outcome of Login: a bearer token plus the authenticated user.
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *userdomain.User
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// AuthService implements registration and password login. Registration always
// produces a PENDING member; an admin must approve the account before login works.
type AuthService struct {
	userRepo UserRepo
	hasher   *security.Hasher
	tokens   *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(userRepo UserRepo, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{userRepo: userRepo, hasher: hasher, tokens: tokens}
}

// Register creates a PENDING member account. Username and email must be unique;
// either collision is a conflict regardless of the existing account's state.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*userdomain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		return nil, apperror.Validation("username is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := security.ValidatePassword(password); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("username already taken")
	}
	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("email already registered")
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:            uuid.New().String(),
		Username:      username,
		Email:         email,
		PasswordHash:  hashed,
		Role:          userdomain.RoleMember,
		ApprovalState: userdomain.ApprovalPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := user.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrDuplicate) {
			return nil, apperror.Conflict("username or email already registered")
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates with username/password and returns a bearer token.
// A pending account authenticates but is refused until approved.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Unauthenticated("invalid credentials")
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated("invalid credentials")
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, apperror.Unauthenticated("invalid credentials")
	}
	if !user.IsApproved() {
		return nil, apperror.Forbidden("account pending approval")
	}
	token, expiresAt, err := s.tokens.IssueAccess(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
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
