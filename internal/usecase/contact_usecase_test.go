package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/contact"
	"contact-tracker/internal/infrastructure/spreadsheet"
)

var errTestRow = errors.New("value too long")

func TestContactUsecase_AddContact_Validation(t *testing.T) {
	uc := NewContactUsecase(&fakeContactRepo{}, Deps{})

	_, err := uc.AddContact(context.Background(), testActor, ContactInput{Email: "a@x.com"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	assert.Equal(t, "Name is required", err.Error())

	_, err = uc.AddContact(context.Background(), testActor, ContactInput{Name: "Alice"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	assert.Equal(t, "Provide at least email or phone", err.Error())
}

func TestContactUsecase_AddContact_ReturnsExisting(t *testing.T) {
	repo := &fakeContactRepo{items: []contact.Contact{{ID: "c-1", Name: "Alice", Email: "a@x.com", Phone: "111"}}}
	rec := &recordingRecorder{}
	pub := &recordingPublisher{}
	uc := NewContactUsecase(repo, Deps{Recorder: rec, Events: pub})

	res, err := uc.AddContact(context.Background(), testActor, ContactInput{Name: "Other", Phone: "111"})
	require.NoError(t, err)
	assert.True(t, res.Existing)
	assert.Equal(t, "c-1", res.Contact.ID)
	assert.Len(t, repo.items, 1)
	assert.Empty(t, rec.activities)
	assert.Empty(t, pub.events)
}

func TestContactUsecase_AddContact_CreatesAndNotifies(t *testing.T) {
	repo := &fakeContactRepo{}
	rec := &recordingRecorder{}
	pub := &recordingPublisher{}
	cache := newMemCache()
	uc := NewContactUsecase(repo, Deps{Recorder: rec, Events: pub, Cache: cache})

	res, err := uc.AddContact(context.Background(), testActor, ContactInput{Name: "  Bob ", Email: " b@x.com "})
	require.NoError(t, err)
	assert.False(t, res.Existing)
	assert.NotEmpty(t, res.Contact.ID)
	assert.Equal(t, "Bob", res.Contact.Name)
	assert.Equal(t, "b@x.com", res.Contact.Email)
	assert.Equal(t, []activity.ActionType{activity.ActionContactAdded}, rec.activities)
	require.Len(t, pub.events, 1)
	assert.Equal(t, EventContactsChanged, pub.events[0].Type)
	assert.Equal(t, 1, cache.invalidated)
}

func TestContactUsecase_CountIsCachedUntilInvalidated(t *testing.T) {
	repo := &fakeContactRepo{items: []contact.Contact{{ID: "c-1", Name: "A", Email: "a@x.com"}}}
	cache := newMemCache()
	uc := NewContactUsecase(repo, Deps{Cache: cache})

	for i := 0; i < 3; i++ {
		n, err := uc.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, 1, repo.countCalls)

	_, err := uc.AddContact(context.Background(), testActor, ContactInput{Name: "B", Email: "b@x.com"})
	require.NoError(t, err)

	n, err := uc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, repo.countCalls)
}

func TestContactUsecase_RepositoryErrorIsInternal(t *testing.T) {
	uc := NewContactUsecase(&fakeContactRepo{err: errors.New("boom")}, Deps{})
	_, err := uc.List(context.Background())
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestContactUsecase_ExportWritesWorkbook(t *testing.T) {
	repo := &fakeContactRepo{items: []contact.Contact{{ID: "c-1", Name: "Alice", Email: "a@x.com"}}}
	rec := &recordingRecorder{}
	uc := NewContactUsecase(repo, Deps{Recorder: rec})

	b, err := uc.Export(context.Background(), testActor)
	require.NoError(t, err)

	rows, err := spreadsheet.ReadFirstSheetFrom(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "Alice", rows[1][1])
	assert.Equal(t, []activity.ActionType{activity.ActionExport}, rec.activities)
}

func TestContactUsecase_ClearAll(t *testing.T) {
	repo := &fakeContactRepo{items: []contact.Contact{{ID: "1"}, {ID: "2"}}}
	cache := newMemCache()
	uc := NewContactUsecase(repo, Deps{Cache: cache})

	n, err := uc.ClearAll(context.Background(), testActor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, cache.invalidated)
}
