package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/pkg/jwt"
	ucauth "contact-tracker/internal/usecase/auth"
)

type memUserRepo struct {
	users map[string]user.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: map[string]user.User{}} }

func (m *memUserRepo) Create(_ context.Context, u user.User) error {
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUserRepo) List(context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) UpdateRole(_ context.Context, id string, role user.Role) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *memUserRepo) UpdateStatus(_ context.Context, id string, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.IsActive = active
	m.users[id] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) CountByRole(_ context.Context, role user.Role) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func newAuthFixture(t *testing.T) (*Auth, *memUserRepo, *recordingRecorder) {
	t.Helper()
	repo := newMemUserRepo()
	rec := &recordingRecorder{}
	svc := jwt.NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthUsecase(repo, svc, rec), repo, rec
}

func TestAuth_RegisterValidation(t *testing.T) {
	uc, _, _ := newAuthFixture(t)

	_, err := uc.Register(context.Background(), ucauth.RegisterInput{Name: "A", Email: "a@x.com", Password: "12345"})
	if !errors.Is(err, ucauth.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	assert.Contains(t, err.Error(), "at least 6")

	u, err := uc.Register(context.Background(), ucauth.RegisterInput{Name: "A", Email: " A@X.com ", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.Empty(t, u.PasswordHash)

	_, err = uc.Register(context.Background(), ucauth.RegisterInput{Name: "B", Email: "a@x.com", Password: "123456"})
	if !errors.Is(err, ucauth.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestAuth_LoginAndRefresh(t *testing.T) {
	uc, _, rec := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, ucauth.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	s, err := uc.Login(ctx, ucauth.LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)
	assert.Equal(t, []activity.ActionType{activity.ActionLogin}, rec.activities)

	_, err = uc.Refresh(ctx, s.AccessToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for access token, got %v", err)
	}

	next, err := uc.Refresh(ctx, s.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)
	assert.Equal(t, "a@x.com", next.User.Email)
}

func TestAuth_InactiveUserCannotLoginOrRefresh(t *testing.T) {
	uc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	u, err := uc.Register(ctx, ucauth.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	s, err := uc.Login(ctx, ucauth.LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, u.ID, false))

	_, err = uc.Login(ctx, ucauth.LoginInput{Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, ucauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, err = uc.Refresh(ctx, s.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestAuth_WrongPassword(t *testing.T) {
	uc, _, _ := newAuthFixture(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, ucauth.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, ucauth.LoginInput{Email: "a@x.com", Password: "secret2"})
	if !errors.Is(err, ucauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuth_MeForDirectoryUser(t *testing.T) {
	uc, _, _ := newAuthFixture(t)
	p := user.Principal{UserID: "oid-1", Email: "d@corp.com", Name: "Dir", Role: user.RoleUser, Provider: user.ProviderAzure}

	u, err := uc.Me(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "oid-1", u.ID)
	assert.Equal(t, "d@corp.com", u.Email)

	_, err = uc.Me(context.Background(), user.Principal{UserID: "gone", Provider: user.ProviderLocal})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
