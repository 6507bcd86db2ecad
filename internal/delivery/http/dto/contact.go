package dto

import (
	"time"

	"contact-tracker/internal/domain/contact"
)

type ContactResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	Designation string    `json:"designation"`
	AddedAt     time.Time `json:"added_at"`
	ImportID    *string   `json:"import_id"`
}

type LogResponse struct {
	ID                  string     `json:"id"`
	ContactID           string     `json:"contact_id"`
	ContactedAt         time.Time  `json:"contacted_at"`
	ContactedBy         string     `json:"contacted_by"`
	Response            string     `json:"response"`
	FollowUpDate        *string    `json:"follow_up_date"`
	Notes               string     `json:"notes"`
	FollowUpCompleted   bool       `json:"follow_up_completed"`
	FollowUpCompletedAt *time.Time `json:"follow_up_completed_at"`
}

type ContactWithLogResponse struct {
	ContactResponse
	LatestLog *LogResponse `json:"latest_log"`
}

type AddContactResponse struct {
	Existing bool            `json:"existing"`
	Contact  ContactResponse `json:"contact"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type FollowUpResponse struct {
	LogResponse
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Designation string `json:"designation"`
}

func NewContactResponse(c contact.Contact) ContactResponse {
	out := ContactResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Company:     c.Company,
		Designation: c.Designation,
		AddedAt:     c.AddedAt,
	}
	if c.ImportID != "" {
		id := c.ImportID
		out.ImportID = &id
	}
	return out
}

func NewContactResponses(items []contact.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewContactResponse(c))
	}
	return out
}

func NewLogResponse(l contact.Log) LogResponse {
	out := LogResponse{
		ID:                  l.ID,
		ContactID:           l.ContactID,
		ContactedAt:         l.ContactedAt,
		ContactedBy:         l.ContactedBy,
		Response:            string(l.Response),
		Notes:               l.Notes,
		FollowUpCompleted:   l.FollowUpCompleted,
		FollowUpCompletedAt: l.FollowUpCompletedAt,
	}
	if l.FollowUpDate != nil {
		d := l.FollowUpDate.Format(time.DateOnly)
		out.FollowUpDate = &d
	}
	return out
}

func NewLogResponses(items []contact.Log) []LogResponse {
	out := make([]LogResponse, 0, len(items))
	for _, l := range items {
		out = append(out, NewLogResponse(l))
	}
	return out
}

func NewContactWithLogResponses(items []contact.WithLatestLog) []ContactWithLogResponse {
	out := make([]ContactWithLogResponse, 0, len(items))
	for _, it := range items {
		r := ContactWithLogResponse{ContactResponse: NewContactResponse(it.Contact)}
		if it.LatestLog != nil {
			l := NewLogResponse(*it.LatestLog)
			r.LatestLog = &l
		}
		out = append(out, r)
	}
	return out
}

func NewFollowUpResponses(items []contact.FollowUp) []FollowUpResponse {
	out := make([]FollowUpResponse, 0, len(items))
	for _, f := range items {
		out = append(out, FollowUpResponse{
			LogResponse: NewLogResponse(f.Log),
			Name:        f.ContactName,
			Email:       f.ContactEmail,
			Phone:       f.ContactPhone,
			Company:     f.Company,
			Designation: f.Designation,
		})
	}
	return out
}
