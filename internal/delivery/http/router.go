package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meteo/backend/internal/domain"
)

const (
	apiPrefix  = "/api/v1"
	searchPath = "/search"
)

// SetupRoutes configures all HTTP routes. /metrics is served only when
// registry is non-nil.
func SetupRoutes(app *fiber.App, handler *Handler, registry *prometheus.Registry) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	if registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	api := app.Group(apiPrefix)
	{
		// Stateless lookups
		api.Get("/weather", handler.GetWeather)
		api.Get("/lookups", handler.GetLookups)

		// Session search page
		api.Get(searchPath, handler.GetSearch)
		api.Post(searchPath, handler.PostSearch)
		api.Delete(searchPath, handler.DeleteSearch)
		api.Post(searchPath+"/location", handler.PostLocation)
		api.Post(searchPath+"/details", handler.PostDetails)

		// Details page
		api.Get("/details", handler.GetDetails)
	}
}

// StatusFor maps an error kind to the HTTP status returned to clients
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindRateLimit:
		return fiber.StatusTooManyRequests
	case domain.KindTimeout:
		return fiber.StatusGatewayTimeout
	case domain.KindServiceUnavailable:
		return fiber.StatusServiceUnavailable
	case domain.KindCanceled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusBadGateway
	}
}

// ErrorHandler renders handler errors as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var de *domain.Error
	if errors.As(err, &de) {
		return c.Status(StatusFor(de.Kind)).JSON(fiber.Map{
			"error":   true,
			"kind":    de.Kind.String(),
			"message": domain.MessageOf(de),
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
