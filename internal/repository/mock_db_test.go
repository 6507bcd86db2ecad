package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"contact-tracker/internal/database"
	"contact-tracker/internal/infrastructure/persistence/postgres"
)

func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return postgres.Wrap(sqlDB), mock
}
