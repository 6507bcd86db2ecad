package contact

import "time"

// Contact is a person record. Email and Phone are empty when absent.
type Contact struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Company     string
	Designation string
	AddedAt     time.Time
	ImportID    string
}

// Import is the manifest of one spreadsheet upload.
type Import struct {
	ID           string
	Filename     string
	ImportedAt   time.Time
	AddedCount   int
	SkippedCount int
	ImportedBy   string
	ContactCount int
}

type Response string

const (
	ResponsePending Response = "pending"
	ResponseYes     Response = "yes"
	ResponseNo      Response = "no"
)

func (r Response) Valid() bool {
	switch r {
	case ResponsePending, ResponseYes, ResponseNo:
		return true
	}
	return false
}

// Log records one outreach attempt and its optional follow-up.
type Log struct {
	ID                  string
	ContactID           string
	ContactedAt         time.Time
	ContactedBy         string
	Response            Response
	FollowUpDate        *time.Time
	Notes               string
	FollowUpCompleted   bool
	FollowUpCompletedAt *time.Time
}

// FollowUp is a log with an open follow-up joined to its contact.
type FollowUp struct {
	Log
	ContactName  string
	ContactEmail string
	ContactPhone string
	Company      string
	Designation  string
}

// WithLatestLog pairs a contact with its most recent log, if any.
type WithLatestLog struct {
	Contact
	LatestLog *Log
}

type Requirement struct {
	ID          string
	ContactID   string
	Role        string
	Experience  string
	Skills      string
	Openings    *int
	Description string
	CreatedAt   time.Time
}

// RequirementView is a requirement joined with its contact's details.
type RequirementView struct {
	Requirement
	ContactName        string
	ContactEmail       string
	ContactPhone       string
	ContactCompany     string
	ContactDesignation string
}
