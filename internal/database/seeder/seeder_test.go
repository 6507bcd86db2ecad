package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-tracker/internal/config"
	"contact-tracker/internal/database"
	"contact-tracker/internal/infrastructure/persistence/postgres"
)

func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return postgres.Wrap(sqlDB), mock
}

type stepSeeder struct {
	name string
	err  error
	ran  *[]string
}

func (s stepSeeder) Name() string { return s.name }

func (s stepSeeder) Run(context.Context, database.DB) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestRequireColumns_ReportsEveryMissingColumn(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM information_schema.columns`).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("email"))

	err := RequireColumns(context.Background(), db, "users", "id", "email", "role", "is_active")

	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "users is missing role, is_active")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireColumns_AllPresent(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM information_schema.columns`).WithArgs("contacts").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("name").AddRow("phone"))

	require.NoError(t, RequireColumns(context.Background(), db, "contacts", "id", "phone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireColumns_NilQuerier(t *testing.T) {
	assert.ErrorIs(t, RequireColumns(context.Background(), nil, "users", "id"), database.ErrNilDB)
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	db, _ := newMockDB(t)
	var ran []string
	boom := errors.New("boom")
	r := Runner{Seeders: []Seeder{
		stepSeeder{name: "superadmin", ran: &ran},
		nil,
		stepSeeder{name: "demo_contacts", err: boom, ran: &ran},
		stepSeeder{name: "never", ran: &ran},
	}}

	err := r.Run(context.Background(), db)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "seed demo_contacts")
	assert.Equal(t, []string{"superadmin", "demo_contacts"}, ran)
}

func TestRunner_NilDB(t *testing.T) {
	assert.ErrorIs(t, Runner{}.Run(context.Background(), nil), database.ErrNilDB)
}

func TestDefaults_DemoIsOptIn(t *testing.T) {
	assert.Len(t, Defaults(config.SeedConfig{}, false), 1)
	withDemo := Defaults(config.SeedConfig{}, true)
	require.Len(t, withDemo, 2)
	assert.Equal(t, "demo_contacts", withDemo[1].Name())
}
