package http

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"forecastio/internal/models"
	"forecastio/pkg/logger"
)

// ForecastService is the part of the coordinator the routes need.
type ForecastService interface {
	GetCurrentConditions(ctx context.Context, coords ...models.Coordinates) ([]models.ForecastView, error)
	GetForecastToday(ctx context.Context, day time.Time, coords ...models.Coordinates) ([]models.ForecastView, error)
	GetForecastWeek(ctx context.Context, coords ...models.Coordinates) ([]models.ForecastView, error)
}

// RawFetcher returns the provider body for one location. Only a repository
// holding the API key can serve the proxy endpoint.
type RawFetcher interface {
	FetchRaw(ctx context.Context, c models.Coordinates, units string) ([]byte, error)
}

type routes struct {
	service ForecastService
	proxy   RawFetcher
	now     func() time.Time
	l       *logger.Logger
}

// NewRouter registers the forecast routes. proxy may be nil, in which case
// /proxy is not served.
func NewRouter(
	app *fiber.App,
	forecastService ForecastService,
	proxy RawFetcher,
	l *logger.Logger,
) {
	r := &routes{
		service: forecastService,
		proxy:   proxy,
		now:     time.Now,
		l:       l,
	}

	r.register(app)
}

func (r *routes) register(app *fiber.App) {
	// Swagger documentation
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		swaggerData, err := os.ReadFile("docs/swagger.json")
		if err != nil {
			return c.Status(fiber.ErrInternalServerError.Code).JSON(ErrorResponse{Error: "Failed to read Swagger documentation"})
		}

		c.Set("Content-Type", "application/json")
		return c.Send(swaggerData)
	})

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	v1 := app.Group("/v1/forecast")
	v1.Get("/current", r.handleCurrentConditions)
	v1.Get("/today", r.handleForecastToday)
	v1.Get("/week", r.handleForecastWeek)

	if r.proxy != nil {
		app.Get("/proxy", r.handleProxy)
	}
}
