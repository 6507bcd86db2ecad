package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/pkg/response"
)

// Pinger is satisfied by the database pool and the cache client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// NewHealthHandler accepts nil pingers; a missing dependency reports as
// "disabled".
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

// Health returns 503 when the database is unreachable. Cache outages only
// degrade the report.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Status: "ok", Database: probe(ctx, h.db), Cache: probe(ctx, h.cache)}
	status := fiber.StatusOK
	if res.Database == "down" {
		res.Status = "unavailable"
		status = fiber.StatusServiceUnavailable
	}
	return response.JSON(c, status, res)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
