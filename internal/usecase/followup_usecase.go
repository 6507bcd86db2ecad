package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/contact"
	"contact-tracker/internal/domain/user"
)

type LogInput struct {
	ContactedBy  string
	Response     string
	FollowUpDate string
	Notes        string
}

// FollowUpUsecase covers outreach logs and the follow-ups they schedule.
type FollowUpUsecase struct {
	contacts contact.Repository
	logs     contact.LogRepository
	deps     Deps
	now      func() time.Time
}

func NewFollowUpUsecase(contacts contact.Repository, logs contact.LogRepository, deps Deps) *FollowUpUsecase {
	return &FollowUpUsecase{contacts: contacts, logs: logs, deps: deps.WithDefaults(), now: time.Now}
}

func (u *FollowUpUsecase) AddLog(ctx context.Context, actor user.Principal, contactID string, in LogInput) (contact.Log, error) {
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return contact.Log{}, invalid("contact id is required")
	}

	resp := contact.Response(strings.ToLower(strings.TrimSpace(in.Response)))
	if resp == "" {
		resp = contact.ResponsePending
	}
	if !resp.Valid() {
		return contact.Log{}, invalid("response must be one of pending, yes, no")
	}

	var followUp *time.Time
	if raw := strings.TrimSpace(in.FollowUpDate); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return contact.Log{}, invalid("follow_up_date must be YYYY-MM-DD")
		}
		followUp = &d
	}

	c, err := u.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return contact.Log{}, ErrNotFound
		}
		return contact.Log{}, fmt.Errorf("%w: get contact: %v", ErrInternal, err)
	}

	by := strings.TrimSpace(in.ContactedBy)
	if by == "" {
		by = actor.Name
	}

	l := contact.Log{
		ID:           uuid.NewString(),
		ContactID:    c.ID,
		ContactedAt:  u.now().UTC(),
		ContactedBy:  by,
		Response:     resp,
		FollowUpDate: followUp,
		Notes:        strings.TrimSpace(in.Notes),
	}
	if err := u.logs.Create(ctx, l); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return contact.Log{}, ErrNotFound
		}
		return contact.Log{}, fmt.Errorf("%w: create log: %v", ErrInternal, err)
	}

	meta := map[string]any{"response": string(resp)}
	if followUp != nil {
		meta["follow_up_date"] = followUp.Format(time.DateOnly)
	}
	u.deps.Events.Publish(EventContactsChanged, map[string]any{"contact_id": c.ID})
	u.deps.Recorder.Activity(actor, activity.ActionContactLogged,
		fmt.Sprintf("Logged %s response for %s", resp, c.Name), c.ID, c.Name, meta)

	return l, nil
}

func (u *FollowUpUsecase) Logs(ctx context.Context, contactID string) ([]contact.Log, error) {
	items, err := u.logs.ListByContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("%w: list logs: %v", ErrInternal, err)
	}
	return items, nil
}

func (u *FollowUpUsecase) DeleteLog(ctx context.Context, id string) error {
	if err := u.logs.Delete(ctx, id); err != nil {
		if errors.Is(err, contact.ErrLogNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: delete log: %v", ErrInternal, err)
	}
	u.deps.Events.Publish(EventContactsChanged, map[string]any{"log_id": id})
	return nil
}

// Pending lists open follow-ups due today (UTC) or earlier.
func (u *FollowUpUsecase) Pending(ctx context.Context) ([]contact.FollowUp, error) {
	items, err := u.logs.PendingFollowUps(ctx, u.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: pending follow-ups: %v", ErrInternal, err)
	}
	return items, nil
}

func (u *FollowUpUsecase) All(ctx context.Context) ([]contact.FollowUp, error) {
	items, err := u.logs.OpenFollowUps(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open follow-ups: %v", ErrInternal, err)
	}
	return items, nil
}

// Complete marks a follow-up done without touching the logged response.
func (u *FollowUpUsecase) Complete(ctx context.Context, actor user.Principal, logID string) (contact.Log, error) {
	if err := u.logs.CompleteFollowUp(ctx, logID, u.now().UTC()); err != nil {
		if errors.Is(err, contact.ErrLogNotFound) {
			return contact.Log{}, ErrNotFound
		}
		return contact.Log{}, fmt.Errorf("%w: complete follow-up: %v", ErrInternal, err)
	}
	l, err := u.logs.GetByID(ctx, logID)
	if err != nil {
		return contact.Log{}, fmt.Errorf("%w: reload log: %v", ErrInternal, err)
	}

	u.deps.Events.Publish(EventFollowUpCompleted, map[string]any{"log_id": l.ID, "contact_id": l.ContactID})
	u.deps.Recorder.Activity(actor, activity.ActionFollowUpDone,
		"Completed follow-up", l.ContactID, "", map[string]any{"log_id": l.ID})
	return l, nil
}
