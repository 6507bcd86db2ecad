package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"contact-tracker/internal/database"
)

// DemoContactsSeeder inserts a handful of sample contacts for local development.
type DemoContactsSeeder struct{}

func (DemoContactsSeeder) Name() string { return "demo_contacts" }

func (DemoContactsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := RequireColumns(ctx, db, "contacts", "id", "name", "email", "phone", "company", "designation", "added_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		Name, Email, Phone, Company, Designation string
	}{
		{"Priya Raman", "priya.raman@example.com", "+1 555 0101", "Northwind", "Talent Partner"},
		{"Daniel Okafor", "daniel.okafor@example.com", "+1 555 0102", "Contoso", "Engineering Manager"},
		{"Mei Lin", "mei.lin@example.com", "+1 555 0103", "Fabrikam", "HR Lead"},
	}

	for _, it := range items {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO contacts (id, name, email, phone, company, designation)
			 SELECT $1, $2, $3, $4, $5, $6
			 WHERE NOT EXISTS (SELECT 1 FROM contacts WHERE email = $3 OR phone = $4)`,
			uuid.NewString(),
			it.Name,
			it.Email,
			it.Phone,
			it.Company,
			it.Designation,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
