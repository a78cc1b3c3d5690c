package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"forecastio/internal/models"
	"forecastio/internal/repositories"
)

// ForecastResponse lists the views for all requested locations, location
// after location.
type ForecastResponse struct {
	Locations  int                   `json:"locations" example:"2"`
	Date       string                `json:"date,omitempty" example:"2025-07-25"`
	Conditions []models.ForecastView `json:"conditions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required parameter: loc"`
}

// handleCurrentConditions godoc
// @Summary Current conditions
// @Description One snapshot per location, in request order
// @Tags Forecast
// @Produce json
// @Param loc query []string true "Location as lat,lon[,unix]; repeat for several" collectionFormat(multi) example(45.44,12.33)
// @Success 200 {object} ForecastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /v1/forecast/current [get]
func (r *routes) handleCurrentConditions(c *fiber.Ctx) error {
	coords, err := parseLocations(c)
	if err != nil {
		return r.fail(c, err)
	}

	views, err := r.service.GetCurrentConditions(c.UserContext(), coords...)
	if err != nil {
		return r.fail(c, err)
	}

	return c.JSON(ForecastResponse{Locations: len(coords), Conditions: views})
}

// handleForecastToday godoc
// @Summary Hourly forecast for one day
// @Description Hourly snapshots falling on the given UTC date (default today), location after location
// @Tags Forecast
// @Produce json
// @Param loc query []string true "Location as lat,lon; repeat for several" collectionFormat(multi)
// @Param date query string false "UTC date, YYYY-MM-DD" example(2025-07-25)
// @Success 200 {object} ForecastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /v1/forecast/today [get]
func (r *routes) handleForecastToday(c *fiber.Ctx) error {
	coords, err := parseLocations(c)
	if err != nil {
		return r.fail(c, err)
	}

	day := r.now().UTC()
	if date := c.Query("date"); date != "" {
		day, err = time.Parse(time.DateOnly, date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "Invalid date format, expected YYYY-MM-DD",
			})
		}
	}

	views, err := r.service.GetForecastToday(c.UserContext(), day, coords...)
	if err != nil {
		return r.fail(c, err)
	}

	return c.JSON(ForecastResponse{
		Locations:  len(coords),
		Date:       day.Format(time.DateOnly),
		Conditions: views,
	})
}

// handleForecastWeek godoc
// @Summary Daily forecast for the week
// @Description Every daily snapshot, location after location
// @Tags Forecast
// @Produce json
// @Param loc query []string true "Location as lat,lon; repeat for several" collectionFormat(multi)
// @Success 200 {object} ForecastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /v1/forecast/week [get]
func (r *routes) handleForecastWeek(c *fiber.Ctx) error {
	coords, err := parseLocations(c)
	if err != nil {
		return r.fail(c, err)
	}

	views, err := r.service.GetForecastWeek(c.UserContext(), coords...)
	if err != nil {
		return r.fail(c, err)
	}

	return c.JSON(ForecastResponse{Locations: len(coords), Conditions: views})
}

// handleProxy godoc
// @Summary Forecast.io proxy
// @Description Forwards to the provider with the server-held API key and returns its body unchanged
// @Tags Proxy
// @Produce json
// @Param url query string true "lat,lon[,unix]" example(45.44,12.33)
// @Param units query string false "auto, ca, uk, uk2, us or si"
// @Success 200 {object} object
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /proxy [get]
func (r *routes) handleProxy(c *fiber.Ctx) error {
	location := c.Query("url")
	if location == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: url",
		})
	}

	coords, err := models.ParseCoordinates(location)
	if err != nil {
		return r.fail(c, err)
	}

	units := c.Query("units")
	if !repositories.ValidUnits(units) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid units, expected one of auto, ca, uk, uk2, us, si",
		})
	}

	body, err := r.proxy.FetchRaw(c.UserContext(), coords, units)
	if err != nil {
		// Upstream statuses pass through so proxy-mode clients see what a
		// direct client would have seen.
		var transportErr *models.TransportError
		if errors.As(err, &transportErr) && transportErr.Status != 0 {
			r.l.Warning("proxied request failed", map[string]any{
				"coordinates": coords.String(),
				"status":      transportErr.Status,
			})
			return c.Status(transportErr.Status).JSON(ErrorResponse{Error: transportErr.Error()})
		}
		return r.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// parseLocations accepts repeated loc parameters and ";"-separated lists.
func parseLocations(c *fiber.Ctx) ([]models.Coordinates, error) {
	var raw []string
	for _, v := range c.Context().QueryArgs().PeekMulti("loc") {
		for _, part := range strings.Split(string(v), ";") {
			if part = strings.TrimSpace(part); part != "" {
				raw = append(raw, part)
			}
		}
	}

	if len(raw) == 0 {
		return nil, errMissingLocation
	}

	coords := make([]models.Coordinates, 0, len(raw))
	for _, s := range raw {
		coord, err := models.ParseCoordinates(s)
		if err != nil {
			return nil, err
		}
		coords = append(coords, coord)
	}

	return coords, nil
}

var errMissingLocation = errors.New("missing required parameter: loc")

func (r *routes) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	fields := map[string]any{
		"path":   c.Path(),
		"query":  string(c.Request().URI().QueryString()),
		"status": status,
	}
	if status >= fiber.StatusInternalServerError {
		r.l.Error(err, fields)
	} else {
		r.l.Warning(err.Error(), fields)
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		transportErr *models.TransportError
		malformedErr *models.MalformedResponseError
	)

	switch {
	case errors.Is(err, errMissingLocation), errors.Is(err, models.ErrInvalidCoordinates):
		return fiber.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &transportErr), errors.As(err, &malformedErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
