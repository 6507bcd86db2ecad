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

const keyContactCount = "contacts:count"

type ContactInput struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	Designation string
}

type AddContactResult struct {
	Existing bool
	Contact  contact.Contact
}

type ContactUsecase struct {
	contacts contact.Repository
	deps     Deps
	now      func() time.Time
}

func NewContactUsecase(contacts contact.Repository, deps Deps) *ContactUsecase {
	return &ContactUsecase{contacts: contacts, deps: deps.WithDefaults(), now: time.Now}
}

// AddContact creates a contact unless one with the same email or phone
// exists, in which case the stored one is returned.
func (u *ContactUsecase) AddContact(ctx context.Context, actor user.Principal, in ContactInput) (AddContactResult, error) {
	c := contact.Contact{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Company:     strings.TrimSpace(in.Company),
		Designation: strings.TrimSpace(in.Designation),
		AddedAt:     u.now().UTC(),
	}
	if c.Name == "" {
		return AddContactResult{}, invalid("Name is required")
	}
	if c.Email == "" && c.Phone == "" {
		return AddContactResult{}, invalid("Provide at least email or phone")
	}

	stored, created, err := u.contacts.CreateUnique(ctx, c)
	if err != nil {
		return AddContactResult{}, fmt.Errorf("%w: create contact: %v", ErrInternal, err)
	}
	if !created {
		return AddContactResult{Existing: true, Contact: stored}, nil
	}

	_ = u.deps.Cache.InvalidateContacts(ctx)
	u.deps.Events.Publish(EventContactsChanged, map[string]any{"contact_id": stored.ID})
	u.deps.Recorder.Activity(actor, activity.ActionContactAdded,
		fmt.Sprintf("Added contact %s", stored.Name), stored.ID, stored.Name,
		map[string]any{"company": stored.Company})

	return AddContactResult{Contact: stored}, nil
}

func (u *ContactUsecase) List(ctx context.Context) ([]contact.WithLatestLog, error) {
	items, err := u.contacts.ListWithLatestLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list contacts: %v", ErrInternal, err)
	}
	return items, nil
}

func (u *ContactUsecase) Count(ctx context.Context) (int, error) {
	var n int
	if ok, _ := u.deps.Cache.GetJSON(ctx, keyContactCount, &n); ok {
		return n, nil
	}
	n, err := u.contacts.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count contacts: %v", ErrInternal, err)
	}
	_ = u.deps.Cache.SetJSON(ctx, keyContactCount, n, 0)
	return n, nil
}

func (u *ContactUsecase) Get(ctx context.Context, id string) (contact.Contact, error) {
	c, err := u.contacts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return contact.Contact{}, ErrNotFound
		}
		return contact.Contact{}, fmt.Errorf("%w: get contact: %v", ErrInternal, err)
	}
	return c, nil
}

// ClearAll removes every contact and import; logs and requirements go with
// their contacts.
func (u *ContactUsecase) ClearAll(ctx context.Context, actor user.Principal) (int64, error) {
	n, err := u.contacts.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: clear contacts: %v", ErrInternal, err)
	}
	_ = u.deps.Cache.InvalidateContacts(ctx)
	u.deps.Events.Publish(EventContactsChanged, map[string]any{"cleared": n})
	u.deps.Recorder.Activity(actor, activity.ActionContactDeleted,
		fmt.Sprintf("Cleared all contacts (%d)", n), "", "", map[string]any{"deleted": n})
	return n, nil
}

var contactExportColumns = []spreadsheet.Column{
	{Header: "Contact ID", Width: 36},
	{Header: "Name", Width: 24},
	{Header: "Email", Width: 28},
	{Header: "Phone", Width: 16},
	{Header: "Company", Width: 20},
	{Header: "Designation", Width: 20},
	{Header: "Added At", Width: 24},
	{Header: "Last Response", Width: 14},
	{Header: "Last Contacted", Width: 24},
	{Header: "Follow Up Date", Width: 14},
	{Header: "Notes", Width: 40},
}

func (u *ContactUsecase) Export(ctx context.Context, actor user.Principal) ([]byte, error) {
	items, err := u.contacts.ListWithLatestLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list contacts: %v", ErrInternal, err)
	}

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		row := []any{
			it.ID, it.Name, it.Email, it.Phone, it.Company, it.Designation,
			it.AddedAt.UTC().Format(time.RFC3339), "", "", "", "",
		}
		if l := it.LatestLog; l != nil {
			row[7] = string(l.Response)
			row[8] = l.ContactedAt.UTC().Format(time.RFC3339)
			if l.FollowUpDate != nil {
				row[9] = l.FollowUpDate.Format(time.DateOnly)
			}
			row[10] = l.Notes
		}
		rows = append(rows, row)
	}

	b, err := spreadsheet.WriteWorkbook("Contacts", contactExportColumns, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: export contacts: %v", ErrInternal, err)
	}
	u.deps.Recorder.Activity(actor, activity.ActionExport,
		fmt.Sprintf("Exported %d contacts", len(rows)), "", "", map[string]any{"kind": "contacts"})
	return b, nil
}
