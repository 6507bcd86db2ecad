package contact

import (
	"context"
	"time"
)

type Repository interface {
	// CreateUnique inserts c unless a contact with the same email or phone
	// exists, in which case that contact is returned with created=false.
	CreateUnique(ctx context.Context, c Contact) (existing Contact, created bool, err error)
	GetByID(ctx context.Context, id string) (Contact, error)
	ListWithLatestLog(ctx context.Context) ([]WithLatestLog, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ImportRepository interface {
	List(ctx context.Context) ([]Import, error)
	Get(ctx context.Context, id string) (Import, error)
	ListContacts(ctx context.Context, importID string) ([]Contact, error)
	// Delete removes the import and every contact it created.
	Delete(ctx context.Context, id string) (deletedContacts int64, err error)
}

type LogRepository interface {
	Create(ctx context.Context, l Log) error
	GetByID(ctx context.Context, id string) (Log, error)
	ListByContact(ctx context.Context, contactID string) ([]Log, error)
	Delete(ctx context.Context, id string) error
	PendingFollowUps(ctx context.Context, asOf time.Time) ([]FollowUp, error)
	OpenFollowUps(ctx context.Context) ([]FollowUp, error)
	CompleteFollowUp(ctx context.Context, id string, at time.Time) error
}

type RequirementRepository interface {
	Create(ctx context.Context, r Requirement) error
	List(ctx context.Context) ([]RequirementView, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}
