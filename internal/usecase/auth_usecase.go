package usecase

import (
	"context"
	"errors"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/pkg/jwt"
	ucauth "contact-tracker/internal/usecase/auth"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// Session is the token pair handed out on login and refresh.
type Session struct {
	User         user.User
	AccessToken  string
	RefreshToken string
}

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (user.User, error)
	Login(ctx context.Context, in ucauth.LoginInput) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	Logout(ctx context.Context, refreshToken string)
	Me(ctx context.Context, p user.Principal) (user.User, error)
}

type Auth struct {
	authSvc  *ucauth.Service
	users    user.Repository
	jwt      jwt.Service
	recorder ActivityRecorder
}

func NewAuthUsecase(users user.Repository, jwtSvc jwt.Service, recorder ActivityRecorder) *Auth {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Auth{authSvc: ucauth.NewService(users), users: users, jwt: jwtSvc, recorder: recorder}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (user.User, error) {
	return u.authSvc.Register(ctx, in)
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (Session, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return Session{}, err
	}

	s, err := u.issue(usr)
	if err != nil {
		return Session{}, err
	}
	u.recorder.Activity(principalOf(usr), activity.ActionLogin, "Logged in", "", "", nil)
	return s, nil
}

// Refresh rotates the token pair. Accounts deactivated since the refresh
// token was issued are rejected.
func (u *Auth) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrRefreshTokenExpired
		}
		return Session{}, ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return Session{}, ErrInvalidRefreshToken
	}

	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, ErrInternal
	}
	if !usr.IsActive {
		return Session{}, ErrInvalidRefreshToken
	}
	usr.PasswordHash = ""

	return u.issue(usr)
}

// Logout records the event when the refresh token identifies a user.
func (u *Auth) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil || !u.jwt.IsRefreshToken(claims) {
		return
	}
	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return
	}
	u.recorder.Activity(principalOf(usr), activity.ActionLogout, "Logged out", "", "", nil)
}

// Me returns the caller's account. Directory users without a local account
// are described from their token.
func (u *Auth) Me(ctx context.Context, p user.Principal) (user.User, error) {
	if p.UserID == "" {
		return user.User{}, ErrUnauthorized
	}
	usr, err := u.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			if p.Provider == user.ProviderAzure {
				return user.User{ID: p.UserID, Name: p.Name, Email: p.Email, Role: p.Role, IsActive: true}, nil
			}
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	usr.PasswordHash = ""
	return usr, nil
}

func (u *Auth) issue(usr user.User) (Session, error) {
	access, err := u.jwt.GenerateAccessToken(jwt.Subject{
		UserID: usr.ID,
		Email:  usr.Email,
		Name:   usr.Name,
		Role:   string(usr.Role),
	})
	if err != nil {
		return Session{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID)
	if err != nil {
		return Session{}, ErrInternal
	}
	return Session{User: usr, AccessToken: access, RefreshToken: refresh}, nil
}

func principalOf(u user.User) user.Principal {
	return user.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Provider: user.ProviderLocal}
}
