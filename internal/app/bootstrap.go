package app

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"go.uber.org/zap"

	"contact-tracker/internal/config"
	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/delivery/http/routes"
	"contact-tracker/internal/pkg/logger"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP app around registry. The upload size limit applies to
// every request body.
func New(cfg config.Config, registry *routes.Registry, log *zap.Logger) *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:   cfg.App.AppName,
		BodyLimit: cfg.Import.MaxUploadBytes(),
	})

	registerGlobalMiddleware(f, cfg, logger.OrNop(log))
	if registry != nil {
		registry.Register(f)
	}
	return f
}

// Bootstrap wires the container, starts its workers and returns a cleanup
// that stops them and releases connections.
func Bootstrap(cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	c.Start(context.Background())

	app := &App{Fiber: New(cfg, c.Registry, c.Logger), Container: c}
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, cfg config.Config, log *zap.Logger) {
	if app == nil {
		return
	}

	// Access log wraps the error middleware so it sees the final status.
	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
	app.Use(middleware.NewErrorMiddleware(log).Middleware())
	app.Use(cors.New(corsConfig(cfg.App.CORSOrigins)))
}

func corsConfig(origins []string) cors.Config {
	wildcard := len(origins) == 0 || slices.Contains(origins, "*")
	if wildcard {
		return cors.Config{AllowOrigins: []string{"*"}}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
		AllowHeaders:     []string{fiber.HeaderAuthorization, fiber.HeaderContentType, middleware.HeaderRequestID},
		ExposeHeaders:    []string{fiber.HeaderContentDisposition, middleware.HeaderRequestID},
	}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
