package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"contact-tracker/internal/domain/user"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
)

const minPasswordLen = 6

// ValidationError is an ErrInvalidInput carrying a client-facing reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "Validation failed: " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// NewUserInput is used by administrators creating accounts directly.
type NewUserInput struct {
	Name     string
	Email    string
	Password string
	Role     user.Role
}

type Service struct {
	users user.Repository
	now   func() time.Time
}

func NewService(users user.Repository) *Service {
	return &Service{users: users, now: time.Now}
}

// Register creates an active account with the user role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	return s.CreateUser(ctx, NewUserInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     user.RoleUser,
	})
}

func (s *Service) CreateUser(ctx context.Context, in NewUserInput) (user.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return user.User{}, &ValidationError{Reason: "name is required"}
	}
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, &ValidationError{Reason: "a valid email is required"}
	}
	if !isValidPassword(in.Password) {
		return user.User{}, &ValidationError{Reason: "password must be at least 6 characters"}
	}
	role := in.Role
	if role == "" {
		role = user.RoleUser
	}
	if !role.Valid() {
		return user.User{}, &ValidationError{Reason: "invalid role"}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return user.User{}, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrInternal
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return user.User{}, ErrInternal
	}

	now := s.now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}
	return sanitizeUser(u), nil
}

// Login verifies credentials. Unknown, inactive and wrong-password accounts
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}
	if !u.IsActive {
		return user.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return sanitizeUser(u), nil
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= minPasswordLen
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
