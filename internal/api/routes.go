package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"lead-gateway/internal/auth"
)

// SetupRoutes wires the ambient HTTP surface: liveness/readiness probes,
// Prometheus exposition, and the enrichment job API behind API-key auth.
func SetupRoutes(app *fiber.App, h *Handlers, authService *auth.Service) {
	app.Get("/healthz", h.HealthCheck)
	app.Get("/readyz", h.ReadyCheck)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("error gathering metrics")
		}

		c.Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		for _, mf := range metricFamilies {
			name := mf.GetName()
			for _, m := range mf.GetMetric() {
				switch {
				case m.GetCounter() != nil:
					c.WriteString(fmt.Sprintf("# TYPE %s counter\n%s %g\n", name, name, m.GetCounter().GetValue()))
				case m.GetGauge() != nil:
					c.WriteString(fmt.Sprintf("# TYPE %s gauge\n%s %g\n", name, name, m.GetGauge().GetValue()))
				case m.GetHistogram() != nil:
					h := m.GetHistogram()
					c.WriteString(fmt.Sprintf("# TYPE %s histogram\n%s_count %d\n%s_sum %g\n",
						name, name, h.GetSampleCount(), name, h.GetSampleSum()))
				}
			}
		}
		return nil
	})

	v1 := app.Group("/v1", authService.RequireAPIKey())
	v1.Post("/jobs", h.CreateEnrichmentJob)
	v1.Get("/jobs/:id", h.GetJobStatus)
	v1.Get("/jobs/:id/cost", h.GetJobCost)
}
