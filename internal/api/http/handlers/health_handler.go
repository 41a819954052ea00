package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-parser/internal/persistence"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pg    *persistence.Postgres
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready. A configured postgres must answer; when no DSN
// was provided storage is off and reported as disabled, not as healthy.
// Redis only degrades the OCR cache, so its state is reported but does not
// fail readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	components := fiber.Map{}

	postgresOK := true
	if !h.pg.Enabled() {
		components["postgres"] = "disabled"
	} else if err := h.pg.Ping(c.UserContext()); err != nil {
		postgresOK = false
		components["postgres"] = "unavailable"
	} else {
		components["postgres"] = "ok"
	}

	if err := h.redis.Ping(c.UserContext()); err != nil {
		components["redis"] = "unavailable"
	} else {
		components["redis"] = "ok"
	}

	if !postgresOK {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":     "unavailable",
			"components": components,
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "components": components})
}
