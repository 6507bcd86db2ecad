// Package seeder fills a migrated database with the accounts and sample
// contacts a fresh install needs.
package seeder

import (
	"context"

	"contact-tracker/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
