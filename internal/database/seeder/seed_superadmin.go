package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"contact-tracker/internal/database"
	"contact-tracker/internal/domain/user"
)

// SuperAdminSeeder creates the first superadmin account. It does nothing when
// a superadmin already exists.
type SuperAdminSeeder struct {
	DisplayName string
	Email       string
	Password    string
}

func (SuperAdminSeeder) Name() string { return "superadmin" }

func (s SuperAdminSeeder) Run(ctx context.Context, db database.DB) error {
	if err := RequireColumns(ctx, db, "users", "id", "name", "email", "password_hash", "role", "is_active"); err != nil {
		return err
	}

	var existing int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(user.RoleSuperAdmin)).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(s.Email))
	if email == "" || s.Password == "" {
		return errors.New("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD are required to create the first superadmin")
	}
	name := strings.TrimSpace(s.DisplayName)
	if name == "" {
		name = "Super Admin"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = db.Exec(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 ON CONFLICT ((lower(email))) DO UPDATE SET role = EXCLUDED.role, is_active = TRUE`,
		uuid.NewString(),
		name,
		email,
		string(hash),
		string(user.RoleSuperAdmin),
	)
	return err
}
