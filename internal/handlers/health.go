// Package handlers contains the HTTP route handler functions for the
// Matchplay API. Each handler corresponds to one endpoint and is responsible
// for reading the request, calling into the match engine or a service, and
// writing a JSON response. Handlers follow the factory pattern — they take
// their dependencies and return a fiber.Handler — so nothing here relies on
// globals.
package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck handles GET /health. Intentionally lightweight: no database
// queries, no authentication — load balancers and container probes hit this
// to decide whether the instance is alive.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
