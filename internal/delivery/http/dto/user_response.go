package dto

import (
	"time"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/user"
)

type UserResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         UserResponse `json:"user"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type CreateUserResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

type ActivityResponse struct {
	ID          int64          `json:"id"`
	UserID      string         `json:"user_id"`
	UserName    string         `json:"user_name"`
	UserEmail   string         `json:"user_email"`
	ActionType  string         `json:"action_type"`
	Description string         `json:"action_description"`
	ContactID   string         `json:"contact_id,omitempty"`
	ContactName string         `json:"contact_name,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type AuditResponse struct {
	ID         int64          `json:"id"`
	UserID     string         `json:"admin_id"`
	UserName   string         `json:"admin_name"`
	UserEmail  string         `json:"admin_email"`
	Action     string         `json:"action_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	OldValues  map[string]any `json:"old_value,omitempty"`
	NewValues  map[string]any `json:"new_value,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type DailyCountResponse struct {
	Date       string `json:"date"`
	ActionType string `json:"action_type"`
	Count      int    `json:"count"`
}

type AnalyticsResponse struct {
	UserID  string               `json:"user_id"`
	Days    int                  `json:"days"`
	Start   time.Time            `json:"start"`
	End     time.Time            `json:"end"`
	Daily   []DailyCountResponse `json:"daily"`
	Summary map[string]int       `json:"summary"`
}

func NewUserResponse(u user.User) UserResponse {
	out := UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
	if !u.CreatedAt.IsZero() {
		t := u.CreatedAt
		out.CreatedAt = &t
	}
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

func NewSessionResponse(access, refresh string, u user.User) SessionResponse {
	return SessionResponse{AccessToken: access, RefreshToken: refresh, User: NewUserResponse(u)}
}

func NewUserResponses(items []user.User) []UserResponse {
	out := make([]UserResponse, 0, len(items))
	for _, u := range items {
		out = append(out, NewUserResponse(u))
	}
	return out
}

func NewActivityResponses(items []activity.Entry) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(items))
	for _, e := range items {
		out = append(out, ActivityResponse{
			ID:          e.ID,
			UserID:      e.UserID,
			UserName:    e.UserName,
			UserEmail:   e.UserEmail,
			ActionType:  string(e.ActionType),
			Description: e.Description,
			ContactID:   e.ContactID,
			ContactName: e.ContactName,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

func NewAuditResponses(items []activity.Audit) []AuditResponse {
	out := make([]AuditResponse, 0, len(items))
	for _, a := range items {
		out = append(out, AuditResponse{
			ID:         a.ID,
			UserID:     a.UserID,
			UserName:   a.UserName,
			UserEmail:  a.UserEmail,
			Action:     a.Action,
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			OldValues:  a.OldValues,
			NewValues:  a.NewValues,
			IPAddress:  a.IPAddress,
			UserAgent:  a.UserAgent,
			CreatedAt:  a.CreatedAt,
		})
	}
	return out
}

func NewAnalyticsResponse(a activity.Analytics) AnalyticsResponse {
	daily := make([]DailyCountResponse, 0, len(a.Daily))
	for _, d := range a.Daily {
		daily = append(daily, DailyCountResponse{Date: d.Date, ActionType: d.ActionType, Count: d.Count})
	}
	summary := a.Summary
	if summary == nil {
		summary = map[string]int{}
	}
	return AnalyticsResponse{
		UserID:  a.UserID,
		Days:    a.Days,
		Start:   a.Start,
		End:     a.End,
		Daily:   daily,
		Summary: summary,
	}
}
