package usecase

import (
	"context"
	"time"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/user"
)

// Cache holds derived views. Implementations must treat an unreachable
// backend as a miss.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateContacts(ctx context.Context) error
}

const (
	EventContactsChanged   = "contacts_changed"
	EventContactsImported  = "contacts_imported"
	EventFollowUpCompleted = "followup_completed"
)

// Publisher pushes change notifications to live clients.
type Publisher interface {
	Publish(eventType string, payload any)
}

// ActivityRecorder stores activity asynchronously and never reports failure.
type ActivityRecorder interface {
	Activity(p user.Principal, action activity.ActionType, description string, contactID, contactName string, meta map[string]any)
	Audit(p user.Principal, action, entityType, entityID string, oldValues, newValues map[string]any)
}

type nopCache struct{}

func (nopCache) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (nopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (nopCache) InvalidateContacts(context.Context) error                  { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

type nopRecorder struct{}

func (nopRecorder) Activity(user.Principal, activity.ActionType, string, string, string, map[string]any) {}
func (nopRecorder) Audit(user.Principal, string, string, string, map[string]any, map[string]any)         {}

// Deps carries the optional collaborators shared by the usecases.
type Deps struct {
	Cache    Cache
	Events   Publisher
	Recorder ActivityRecorder
}

func (d Deps) WithDefaults() Deps {
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	if d.Events == nil {
		d.Events = nopPublisher{}
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	return d
}
