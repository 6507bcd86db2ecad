// Package admin implements account management and activity reporting for
// administrators.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/usecase"
	ucauth "contact-tracker/internal/usecase/auth"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
	analyticsTTL         = 5 * time.Minute
	keyAnalytics         = "analytics:"
)

var ErrLastSuperAdmin = errors.New("cannot remove the last superadmin")

type Service struct {
	users      user.Repository
	activities activity.Repository
	accounts   *ucauth.Service
	deps       usecase.Deps
	now        func() time.Time
}

func NewService(users user.Repository, activities activity.Repository, deps usecase.Deps) *Service {
	return &Service{
		users:      users,
		activities: activities,
		accounts:   ucauth.NewService(users),
		deps:       deps.WithDefaults(),
		now:        time.Now,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", usecase.ErrInternal, err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *Service) CreateUser(ctx context.Context, actor user.Principal, in ucauth.NewUserInput) (user.User, error) {
	created, err := s.accounts.CreateUser(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, ucauth.ErrInvalidInput):
			return user.User{}, &usecase.InputError{Msg: err.Error()}
		case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
			return user.User{}, &usecase.InputError{Msg: "Email already registered"}
		}
		return user.User{}, fmt.Errorf("%w: create user: %v", usecase.ErrInternal, err)
	}

	s.deps.Recorder.Audit(actor, "CREATE_USER", "user", created.ID, nil, map[string]any{
		"email": created.Email,
		"name":  created.Name,
		"role":  string(created.Role),
	})
	return created, nil
}

func (s *Service) UpdateRole(ctx context.Context, actor user.Principal, id, rawRole string) error {
	role := user.Role(strings.ToLower(strings.TrimSpace(rawRole)))
	if !role.Valid() {
		return &usecase.InputError{Msg: "Invalid role"}
	}
	if id == actor.UserID {
		return &usecase.InputError{Msg: "You cannot change your own role"}
	}

	target, err := s.target(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == user.RoleSuperAdmin && role != user.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return s.mapUserErr("update role", err)
	}
	s.deps.Recorder.Audit(actor, "UPDATE_ROLE", "user", id,
		map[string]any{"role": string(target.Role)},
		map[string]any{"role": string(role)})
	return nil
}

// UpdateStatus activates or deactivates an account. Only a superadmin may
// change another superadmin.
func (s *Service) UpdateStatus(ctx context.Context, actor user.Principal, id string, active bool) error {
	if id == actor.UserID {
		return &usecase.InputError{Msg: "You cannot change your own status"}
	}

	target, err := s.target(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == user.RoleSuperAdmin && actor.Role != user.RoleSuperAdmin {
		return usecase.ErrForbidden
	}

	if err := s.users.UpdateStatus(ctx, id, active); err != nil {
		return s.mapUserErr("update status", err)
	}
	s.deps.Recorder.Audit(actor, "UPDATE_STATUS", "user", id,
		map[string]any{"is_active": target.IsActive},
		map[string]any{"is_active": active})
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, actor user.Principal, id string) error {
	if id == actor.UserID {
		return &usecase.InputError{Msg: "You cannot delete your own account"}
	}

	target, err := s.target(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == user.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return s.mapUserErr("delete user", err)
	}
	s.deps.Recorder.Audit(actor, "DELETE_USER", "user", id,
		map[string]any{"email": target.Email, "role": string(target.Role)}, nil)
	return nil
}

// UserAnalytics summarises a user's activity over the last days days,
// bucketed per UTC day and action type.
func (s *Service) UserAnalytics(ctx context.Context, userID string, days int) (activity.Analytics, error) {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}

	key := fmt.Sprintf("%s%s:%d", keyAnalytics, userID, days)
	var cached activity.Analytics
	if ok, _ := s.deps.Cache.GetJSON(ctx, key, &cached); ok {
		return cached, nil
	}

	if _, err := s.target(ctx, userID); err != nil {
		return activity.Analytics{}, err
	}

	end := s.now().UTC()
	start := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	daily, err := s.activities.DailyCounts(ctx, userID, start)
	if err != nil {
		return activity.Analytics{}, fmt.Errorf("%w: daily counts: %v", usecase.ErrInternal, err)
	}

	summary := make(map[string]int)
	for _, d := range daily {
		summary[d.ActionType] += d.Count
	}

	out := activity.Analytics{
		UserID:  userID,
		Days:    days,
		Start:   start,
		End:     end,
		Daily:   daily,
		Summary: summary,
	}
	_ = s.deps.Cache.SetJSON(ctx, key, out, analyticsTTL)
	return out, nil
}

func (s *Service) Activities(ctx context.Context, f activity.Filter) ([]activity.Entry, error) {
	items, err := s.activities.ListActivities(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: list activities: %v", usecase.ErrInternal, err)
	}
	return items, nil
}

func (s *Service) AuditLogs(ctx context.Context, f activity.Filter) ([]activity.Audit, error) {
	items, err := s.activities.ListAudits(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: list audit logs: %v", usecase.ErrInternal, err)
	}
	return items, nil
}

func (s *Service) target(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, s.mapUserErr("get user", err)
	}
	return u, nil
}

func (s *Service) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.users.CountByRole(ctx, user.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("%w: count superadmins: %v", usecase.ErrInternal, err)
	}
	if n <= 1 {
		return fmt.Errorf("%w: %w", usecase.ErrConflict, ErrLastSuperAdmin)
	}
	return nil
}

func (s *Service) mapUserErr(op string, err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return usecase.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", usecase.ErrInternal, op, err)
}
