package usecase

import (
	"context"
	"sync"
	"time"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/contact"
	"contact-tracker/internal/domain/importing"
	"contact-tracker/internal/domain/user"
)

type fakeContactRepo struct {
	items      []contact.Contact
	countCalls int
	err        error
}

func (f *fakeContactRepo) CreateUnique(_ context.Context, c contact.Contact) (contact.Contact, bool, error) {
	if f.err != nil {
		return contact.Contact{}, false, f.err
	}
	for _, ex := range f.items {
		if (c.Email != "" && ex.Email == c.Email) || (c.Phone != "" && ex.Phone == c.Phone) {
			return ex, false, nil
		}
	}
	f.items = append(f.items, c)
	return c, true, nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id string) (contact.Contact, error) {
	for _, c := range f.items {
		if c.ID == id {
			return c, nil
		}
	}
	return contact.Contact{}, contact.ErrNotFound
}

func (f *fakeContactRepo) ListWithLatestLog(context.Context) ([]contact.WithLatestLog, error) {
	out := make([]contact.WithLatestLog, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, contact.WithLatestLog{Contact: c})
	}
	return out, f.err
}

func (f *fakeContactRepo) Count(context.Context) (int, error) {
	f.countCalls++
	return len(f.items), f.err
}

func (f *fakeContactRepo) DeleteAll(context.Context) (int64, error) {
	n := int64(len(f.items))
	f.items = nil
	return n, f.err
}

type fakeLogRepo struct {
	logs []contact.Log
}

func (f *fakeLogRepo) Create(_ context.Context, l contact.Log) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeLogRepo) GetByID(_ context.Context, id string) (contact.Log, error) {
	for _, l := range f.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return contact.Log{}, contact.ErrLogNotFound
}

func (f *fakeLogRepo) ListByContact(_ context.Context, contactID string) ([]contact.Log, error) {
	var out []contact.Log
	for _, l := range f.logs {
		if l.ContactID == contactID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) Delete(_ context.Context, id string) error {
	for i, l := range f.logs {
		if l.ID == id {
			f.logs = append(f.logs[:i], f.logs[i+1:]...)
			return nil
		}
	}
	return contact.ErrLogNotFound
}

func (f *fakeLogRepo) PendingFollowUps(_ context.Context, asOf time.Time) ([]contact.FollowUp, error) {
	var out []contact.FollowUp
	for _, l := range f.logs {
		if l.FollowUpDate != nil && !l.FollowUpCompleted && !l.FollowUpDate.After(asOf) {
			out = append(out, contact.FollowUp{Log: l})
		}
	}
	return out, nil
}

func (f *fakeLogRepo) OpenFollowUps(context.Context) ([]contact.FollowUp, error) {
	var out []contact.FollowUp
	for _, l := range f.logs {
		if l.FollowUpDate != nil && !l.FollowUpCompleted {
			out = append(out, contact.FollowUp{Log: l})
		}
	}
	return out, nil
}

func (f *fakeLogRepo) CompleteFollowUp(_ context.Context, id string, at time.Time) error {
	for i := range f.logs {
		if f.logs[i].ID == id {
			f.logs[i].FollowUpCompleted = true
			f.logs[i].FollowUpCompletedAt = &at
			return nil
		}
	}
	return contact.ErrLogNotFound
}

type fakeRequirementRepo struct {
	items []contact.Requirement
}

func (f *fakeRequirementRepo) Create(_ context.Context, r contact.Requirement) error {
	f.items = append(f.items, r)
	return nil
}

func (f *fakeRequirementRepo) List(context.Context) ([]contact.RequirementView, error) {
	out := make([]contact.RequirementView, 0, len(f.items))
	for _, r := range f.items {
		out = append(out, contact.RequirementView{Requirement: r, ContactName: "Alice"})
	}
	return out, nil
}

func (f *fakeRequirementRepo) Delete(_ context.Context, id string) error {
	for i, r := range f.items {
		if r.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return contact.ErrRequirementNotFound
}

func (f *fakeRequirementRepo) DeleteAll(context.Context) (int64, error) {
	n := int64(len(f.items))
	f.items = nil
	return n, nil
}

type fakeImportRepo struct {
	imports    []contact.Import
	listCalls  int
	deleted    map[string]int64
	contactsOf map[string][]contact.Contact
}

func (f *fakeImportRepo) List(context.Context) ([]contact.Import, error) {
	f.listCalls++
	return f.imports, nil
}

func (f *fakeImportRepo) Get(_ context.Context, id string) (contact.Import, error) {
	for _, i := range f.imports {
		if i.ID == id {
			return i, nil
		}
	}
	return contact.Import{}, contact.ErrImportNotFound
}

func (f *fakeImportRepo) ListContacts(_ context.Context, id string) ([]contact.Contact, error) {
	return f.contactsOf[id], nil
}

func (f *fakeImportRepo) Delete(_ context.Context, id string) (int64, error) {
	n, ok := f.deleted[id]
	if !ok {
		return 0, contact.ErrImportNotFound
	}
	return n, nil
}

// memWriter mimics the transactional writer over an in-memory table.
type memWriter struct {
	emails    map[string]bool
	phones    map[string]bool
	failRow   int
	err       error
	manifests []importing.Manifest
}

func (w *memWriter) ExistingEmails(_ context.Context, emails []string) ([]string, error) {
	var out []string
	for _, e := range emails {
		if w.emails[e] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (w *memWriter) ExistingPhones(_ context.Context, phones []string) ([]string, error) {
	var out []string
	for _, p := range phones {
		if w.phones[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (w *memWriter) Write(ctx context.Context, m importing.Manifest, reconcile importing.ReconcileFunc) (importing.Outcome, error) {
	if w.err != nil {
		return importing.Outcome{}, w.err
	}
	if w.emails == nil {
		w.emails = map[string]bool{}
	}
	if w.phones == nil {
		w.phones = map[string]bool{}
	}
	rec, err := reconcile(ctx, w)
	if err != nil {
		return importing.Outcome{}, err
	}
	out := importing.Outcome{Skipped: rec.Skipped}
	for _, c := range rec.Accepted {
		if c.Row == w.failRow {
			out.RowErrors = append(out.RowErrors, importing.RowError{Row: c.Row, Err: errTestRow})
			continue
		}
		if c.Email != "" {
			w.emails[c.Email] = true
		}
		if c.Phone != "" {
			w.phones[c.Phone] = true
		}
		out.Added++
	}
	w.manifests = append(w.manifests, m)
	return out, nil
}

type memCache struct {
	mu          sync.Mutex
	data        map[string]any
	invalidated int
}

func newMemCache() *memCache { return &memCache{data: map[string]any{}} }

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch dst := out.(type) {
	case *int:
		*dst = v.(int)
	case *[]contact.Import:
		*dst = v.([]contact.Import)
	default:
		return false, nil
	}
	return true, nil
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) InvalidateContacts(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.data = map[string]any{}
	return nil
}

type publishedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload any) {
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
}

type recordingRecorder struct {
	activities []activity.ActionType
	audits     []string
}

func (r *recordingRecorder) Activity(_ user.Principal, action activity.ActionType, _ string, _, _ string, _ map[string]any) {
	r.activities = append(r.activities, action)
}

func (r *recordingRecorder) Audit(_ user.Principal, action, _, _ string, _, _ map[string]any) {
	r.audits = append(r.audits, action)
}

var testActor = user.Principal{UserID: "u-1", Name: "Alice", Email: "alice@x.com", Role: user.RoleUser}
