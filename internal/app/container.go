package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"contact-tracker/internal/config"
	"contact-tracker/internal/database"
	dbpostgres "contact-tracker/internal/database/postgres"
	"contact-tracker/internal/delivery/http/handler"
	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/delivery/http/routes"
	"contact-tracker/internal/infrastructure/azuread"
	"contact-tracker/internal/infrastructure/cache"
	"contact-tracker/internal/infrastructure/persistence/postgres"
	"contact-tracker/internal/infrastructure/spreadsheet"
	"contact-tracker/internal/pkg/jwt"
	"contact-tracker/internal/pkg/logger"
	"contact-tracker/internal/recorder"
	"contact-tracker/internal/repository"
	"contact-tracker/internal/usecase"
	"contact-tracker/internal/usecase/admin"
	"contact-tracker/internal/ws"
)

const (
	recorderWorkers = 4
	recorderBuffer  = 256
)

type Container struct {
	Config   config.Config
	Logger   *zap.Logger
	DB       database.DB
	Cache    *cache.Redis
	Hub      *ws.Hub
	Recorder *recorder.Recorder
	Registry *routes.Registry

	cancel context.CancelFunc
}

func NewContainer(cfg config.Config, log *zap.Logger) (*Container, error) {
	log = logger.OrNop(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, log),
		Hub:    ws.NewHub(log),
	}
	c.Recorder = recorder.New(repository.NewPostgresActivityRepository(db), recorderWorkers, recorderBuffer, log)
	c.Registry = c.buildRoutes()
	return c, nil
}

func (c *Container) buildRoutes() *routes.Registry {
	cfg := c.Config

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)
	verifier := azuread.NewVerifier(cfg.Azure, c.Cache, c.Logger)
	authMw := middleware.NewAuthMiddleware(jwtSvc, verifier)

	userRepo := postgres.NewUserRepository(c.DB)
	contactRepo := repository.NewPostgresContactRepository(c.DB)
	logRepo := repository.NewPostgresContactLogRepository(c.DB)
	requirementRepo := repository.NewPostgresRequirementRepository(c.DB)
	importRepo := repository.NewPostgresImportRepository(c.DB, cfg.Import.BatchSize)
	activityRepo := repository.NewPostgresActivityRepository(c.DB)

	deps := usecase.Deps{Cache: c.Cache, Events: c.Hub, Recorder: c.Recorder}

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc, c.Recorder)
	contactUC := usecase.NewContactUsecase(contactRepo, deps)
	followUpUC := usecase.NewFollowUpUsecase(contactRepo, logRepo, deps)
	requirementUC := usecase.NewRequirementUsecase(contactRepo, requirementRepo, deps)
	importUC := usecase.NewImportUsecase(importRepo, importRepo, spreadsheet.ReadFirstSheet, deps, c.Logger)
	adminSvc := admin.NewService(userRepo, activityRepo, deps)

	return routes.NewRegistry(routes.Handlers{
		Health: handler.NewHealthHandler(c.DB, c.Cache),
		Auth: handler.NewAuthHandler(authUC, handler.CookieConfig{
			Secure: strings.EqualFold(cfg.App.Environment, "production"),
			MaxAge: jwtSvc.RefreshTTL(),
		}),
		Contacts: handler.NewContactHandler(contactUC, followUpUC),
		Imports: handler.NewImportHandler(importUC, handler.UploadConfig{
			TempDir:      cfg.Import.TempDir,
			CleanupDelay: cfg.Import.CleanupDelay,
		}, c.Logger),
		Requirements: handler.NewRequirementHandler(requirementUC),
		Admin:        handler.NewAdminHandler(adminSvc),
		WS:           ws.NewHandler(c.Hub, cfg.App.CORSOrigins, c.Logger),
	}, authMw.Middleware())
}

// Start launches the background workers. They stop when ctx is cancelled or
// Close is called.
func (c *Container) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	go c.Hub.Run(ctx)
	c.Recorder.Start(ctx)
}

// SQLDB exposes the database/sql handle shared with the pool, used by the
// migration runner.
func (c *Container) SQLDB() (*sql.DB, error) {
	s, ok := c.DB.(interface{ SQLDB() *sql.DB })
	if !ok || s.SQLDB() == nil {
		return nil, errors.New("database does not expose a sql handle")
	}
	return s.SQLDB(), nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Recorder != nil && c.cancel != nil {
		c.Recorder.Close()
	}
	if c.cancel != nil {
		c.cancel()
	}

	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
