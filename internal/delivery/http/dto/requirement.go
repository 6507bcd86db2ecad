package dto

import (
	"time"

	"contact-tracker/internal/domain/contact"
)

type RequirementResponse struct {
	ID          string    `json:"id"`
	ContactID   string    `json:"contact_id"`
	Role        string    `json:"role"`
	Experience  string    `json:"experience"`
	Skills      string    `json:"skills"`
	Openings    *int      `json:"openings"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type RequirementViewResponse struct {
	RequirementResponse
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Designation string `json:"designation"`
}

func NewRequirementResponse(r contact.Requirement) RequirementResponse {
	return RequirementResponse{
		ID:          r.ID,
		ContactID:   r.ContactID,
		Role:        r.Role,
		Experience:  r.Experience,
		Skills:      r.Skills,
		Openings:    r.Openings,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func NewRequirementViewResponses(items []contact.RequirementView) []RequirementViewResponse {
	out := make([]RequirementViewResponse, 0, len(items))
	for _, r := range items {
		out = append(out, RequirementViewResponse{
			RequirementResponse: NewRequirementResponse(r.Requirement),
			ContactName:         r.ContactName,
			Email:               r.ContactEmail,
			Phone:               r.ContactPhone,
			Company:             r.ContactCompany,
			Designation:         r.ContactDesignation,
		})
	}
	return out
}
