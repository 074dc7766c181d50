package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck handles GET /health.
// It only reports that the process is up. No data files are read, so a missing
// dataset never fails a liveness check; missing files show up as 202 answers on
// the data endpoints and in the maintenance freshness report instead.
//
// Container healthchecks and load balancers poll this route. Unlike the other
// handlers it needs no *Deps, so it's registered directly rather than through
// a factory:
//
//	app.Get("/health", handlers.HealthCheck)
func HealthCheck(c *fiber.Ctx) error {
	// c.JSON serializes the map and sends it with 200 OK.
	// fiber.Map is shorthand for map[string]interface{}.
	return c.JSON(fiber.Map{"status": "ok"})
}
