package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-tracker/internal/domain/contact"
	"contact-tracker/internal/infrastructure/spreadsheet"
)

func newRequirementFixture() (*RequirementUsecase, *fakeRequirementRepo) {
	contacts := &fakeContactRepo{items: []contact.Contact{{ID: "c-1", Name: "Alice"}}}
	reqs := &fakeRequirementRepo{}
	return NewRequirementUsecase(contacts, reqs, Deps{}), reqs
}

func TestRequirementUsecase_Create_Validation(t *testing.T) {
	uc, _ := newRequirementFixture()
	neg := -1

	cases := []RequirementInput{
		{Role: "Engineer"},
		{ContactID: "c-1"},
		{ContactID: "c-1", Role: "Engineer", Openings: &neg},
	}
	for _, in := range cases {
		_, err := uc.Create(context.Background(), testActor, in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}

	_, err := uc.Create(context.Background(), testActor, RequirementInput{ContactID: "nope", Role: "Engineer"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequirementUsecase_CreateDefaultsOpenings(t *testing.T) {
	uc, reqs := newRequirementFixture()

	r, err := uc.Create(context.Background(), testActor, RequirementInput{ContactID: "c-1", Role: " Engineer "})
	require.NoError(t, err)
	require.NotNil(t, r.Openings)
	assert.Equal(t, 0, *r.Openings)
	assert.Equal(t, "Engineer", r.Role)
	assert.Len(t, reqs.items, 1)
}

func TestRequirementUsecase_DeleteUnknown(t *testing.T) {
	uc, _ := newRequirementFixture()
	err := uc.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequirementUsecase_ExportColumns(t *testing.T) {
	uc, _ := newRequirementFixture()
	three := 3
	_, err := uc.Create(context.Background(), testActor, RequirementInput{ContactID: "c-1", Role: "Engineer", Openings: &three})
	require.NoError(t, err)

	b, err := uc.Export(context.Background(), testActor)
	require.NoError(t, err)

	rows, err := spreadsheet.ReadFirstSheetFrom(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"Requirement ID", "Contact Name", "Email", "Phone", "Company", "Designation",
		"Role", "Experience", "Skills", "Openings", "Description", "Created At",
	}, rows[0])
	assert.Equal(t, "Alice", rows[1][1])
	assert.Equal(t, "Engineer", rows[1][6])
	assert.Equal(t, "3", rows[1][9])
}
