package seeder

import "contact-tracker/internal/config"

// Defaults returns the seeders every environment needs. Demo data is opt-in.
func Defaults(cfg config.SeedConfig, demo bool) []Seeder {
	out := []Seeder{
		SuperAdminSeeder{
			DisplayName: cfg.SuperAdminName,
			Email:       cfg.SuperAdminEmail,
			Password:    cfg.SuperAdminPassword,
		},
	}
	if demo {
		out = append(out, DemoContactsSeeder{})
	}
	return out
}
