package activity

import (
	"context"
	"time"
)

type ActionType string

const (
	ActionLogin            ActionType = "LOGIN"
	ActionLogout           ActionType = "LOGOUT"
	ActionContactAdded     ActionType = "CONTACT_ADDED"
	ActionContactDeleted   ActionType = "CONTACT_DELETED"
	ActionContactLogged    ActionType = "CONTACT_LOG_ADDED"
	ActionFollowUpDone     ActionType = "FOLLOWUP_COMPLETED"
	ActionImport           ActionType = "CONTACTS_IMPORTED"
	ActionImportDeleted    ActionType = "IMPORT_DELETED"
	ActionRequirementAdded ActionType = "REQUIREMENT_ADDED"
	ActionExport           ActionType = "EXPORT"
)

// Entry is a user action worth showing in per-user analytics.
type Entry struct {
	ID          int64
	UserID      string
	UserName    string
	UserEmail   string
	ActionType  ActionType
	Description string
	ContactID   string
	ContactName string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// Audit is an administrative change with before/after values.
type Audit struct {
	ID         int64
	UserID     string
	UserName   string
	UserEmail  string
	Action     string
	EntityType string
	EntityID   string
	OldValues  map[string]any
	NewValues  map[string]any
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

type Filter struct {
	UserID     string
	ActionType string
	EntityType string
	Limit      int
	Offset     int
}

type DailyCount struct {
	Date       string
	ActionType string
	Count      int
}

type Analytics struct {
	UserID  string
	Days    int
	Start   time.Time
	End     time.Time
	Daily   []DailyCount
	Summary map[string]int
}

type Repository interface {
	InsertActivity(ctx context.Context, e Entry) error
	InsertAudit(ctx context.Context, a Audit) error
	ListActivities(ctx context.Context, f Filter) ([]Entry, error)
	ListAudits(ctx context.Context, f Filter) ([]Audit, error)
	DailyCounts(ctx context.Context, userID string, since time.Time) ([]DailyCount, error)
}
