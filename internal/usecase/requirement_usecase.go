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
	"contact-tracker/internal/infrastructure/spreadsheet"
)

type RequirementInput struct {
	ContactID   string
	Role        string
	Experience  string
	Skills      string
	Openings    *int
	Description string
}

type RequirementUsecase struct {
	contacts     contact.Repository
	requirements contact.RequirementRepository
	deps         Deps
	now          func() time.Time
}

func NewRequirementUsecase(contacts contact.Repository, requirements contact.RequirementRepository, deps Deps) *RequirementUsecase {
	return &RequirementUsecase{contacts: contacts, requirements: requirements, deps: deps.WithDefaults(), now: time.Now}
}

func (u *RequirementUsecase) Create(ctx context.Context, actor user.Principal, in RequirementInput) (contact.Requirement, error) {
	contactID := strings.TrimSpace(in.ContactID)
	role := strings.TrimSpace(in.Role)
	if contactID == "" || role == "" {
		return contact.Requirement{}, invalid("contact_id and role required")
	}
	if in.Openings != nil && *in.Openings < 0 {
		return contact.Requirement{}, invalid("openings must not be negative")
	}

	c, err := u.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return contact.Requirement{}, ErrNotFound
		}
		return contact.Requirement{}, fmt.Errorf("%w: get contact: %v", ErrInternal, err)
	}

	openings := 0
	if in.Openings != nil {
		openings = *in.Openings
	}
	r := contact.Requirement{
		ID:          uuid.NewString(),
		ContactID:   c.ID,
		Role:        role,
		Experience:  strings.TrimSpace(in.Experience),
		Skills:      strings.TrimSpace(in.Skills),
		Openings:    &openings,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   u.now().UTC(),
	}
	if err := u.requirements.Create(ctx, r); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return contact.Requirement{}, ErrNotFound
		}
		return contact.Requirement{}, fmt.Errorf("%w: create requirement: %v", ErrInternal, err)
	}

	u.deps.Recorder.Activity(actor, activity.ActionRequirementAdded,
		fmt.Sprintf("Added requirement %s for %s", r.Role, c.Name), c.ID, c.Name,
		map[string]any{"requirement_id": r.ID, "openings": openings})
	return r, nil
}

func (u *RequirementUsecase) List(ctx context.Context) ([]contact.RequirementView, error) {
	items, err := u.requirements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list requirements: %v", ErrInternal, err)
	}
	return items, nil
}

func (u *RequirementUsecase) Delete(ctx context.Context, id string) error {
	if err := u.requirements.Delete(ctx, id); err != nil {
		if errors.Is(err, contact.ErrRequirementNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: delete requirement: %v", ErrInternal, err)
	}
	return nil
}

func (u *RequirementUsecase) DeleteAll(ctx context.Context) (int64, error) {
	n, err := u.requirements.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: clear requirements: %v", ErrInternal, err)
	}
	return n, nil
}

var requirementExportColumns = []spreadsheet.Column{
	{Header: "Requirement ID", Width: 36},
	{Header: "Contact Name", Width: 24},
	{Header: "Email", Width: 24},
	{Header: "Phone", Width: 16},
	{Header: "Company", Width: 20},
	{Header: "Designation", Width: 20},
	{Header: "Role", Width: 20},
	{Header: "Experience", Width: 12},
	{Header: "Skills", Width: 40},
	{Header: "Openings", Width: 10},
	{Header: "Description", Width: 50},
	{Header: "Created At", Width: 24},
}

func (u *RequirementUsecase) Export(ctx context.Context, actor user.Principal) ([]byte, error) {
	items, err := u.requirements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list requirements: %v", ErrInternal, err)
	}

	rows := make([][]any, 0, len(items))
	for _, r := range items {
		var openings any = ""
		if r.Openings != nil {
			openings = *r.Openings
		}
		rows = append(rows, []any{
			r.ID, r.ContactName, r.ContactEmail, r.ContactPhone, r.ContactCompany, r.ContactDesignation,
			r.Role, r.Experience, r.Skills, openings, r.Description,
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	b, err := spreadsheet.WriteWorkbook("Requirements", requirementExportColumns, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: export requirements: %v", ErrInternal, err)
	}
	u.deps.Recorder.Activity(actor, activity.ActionExport,
		fmt.Sprintf("Exported %d requirements", len(rows)), "", "", map[string]any{"kind": "requirements"})
	return b, nil
}
