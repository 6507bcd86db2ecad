package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"contact-tracker/internal/config"
	"contact-tracker/internal/database/migration"
	"contact-tracker/internal/database/migrations"
	"contact-tracker/internal/database/seeder"
	"contact-tracker/internal/infrastructure/persistence/postgres"
	"contact-tracker/internal/pkg/logger"
)

func main() {
	demo := flag.Bool("demo", false, "also insert demo contacts")
	skipMigrate := flag.Bool("skip-migrate", false, "do not apply migrations first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.App.AppName+"-seed")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !*skipMigrate {
		r := migration.Runner{Dir: cfg.App.MigrationsDir, FS: migrations.FS, Logger: zl}
		if err := r.Run(ctx, db.SQLDB()); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
	}

	r := seeder.Runner{Seeders: seeder.Defaults(cfg.Seed, *demo), Logger: zl}
	if err := r.Run(ctx, db); err != nil {
		zl.Fatal("seeding failed", zap.Error(err))
	}
	zl.Info("seeding complete", zap.Bool("demo", *demo))
}
