package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastio/internal/models"
	"forecastio/internal/repositories"
	"forecastio/internal/services/forecast"
	"forecastio/pkg/httpserver"
	"forecastio/pkg/logger"
)

type fakeService struct {
	coords []models.Coordinates
	day    time.Time
	views  []models.ForecastView
	err    error
}

func (f *fakeService) GetCurrentConditions(_ context.Context, coords ...models.Coordinates) ([]models.ForecastView, error) {
	f.coords = coords
	return f.views, f.err
}

func (f *fakeService) GetForecastToday(_ context.Context, day time.Time, coords ...models.Coordinates) ([]models.ForecastView, error) {
	f.coords = coords
	f.day = day
	return f.views, f.err
}

func (f *fakeService) GetForecastWeek(_ context.Context, coords ...models.Coordinates) ([]models.ForecastView, error) {
	f.coords = coords
	return f.views, f.err
}

type fakeFetcher struct {
	coords models.Coordinates
	units  string
	body   []byte
	err    error
}

func (f *fakeFetcher) FetchRaw(_ context.Context, c models.Coordinates, units string) ([]byte, error) {
	f.coords = c
	f.units = units
	return f.body, f.err
}

func newTestApp(service ForecastService, proxy RawFetcher) *fiber.App {
	app := httpserver.InitFiberServer("test-app")
	r := &routes{
		service: service,
		proxy:   proxy,
		now:     func() time.Time { return time.Date(2025, 7, 25, 13, 0, 0, 0, time.UTC) },
		l:       logger.NewNop(),
	}
	r.register(app)
	return app
}

func doGet(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func sampleViews() []models.ForecastView {
	temp := 21.5
	ts := int64(1753448400)
	return []models.ForecastView{
		models.NewForecastView(models.DataPoint{Time: &ts, Temperature: &temp}, nil),
	}
}

func TestHandleCurrentConditions(t *testing.T) {
	service := &fakeService{views: sampleViews()}
	app := newTestApp(service, nil)

	status, body := doGet(t, app, "/v1/forecast/current?loc=45.44,12.33&loc=51.5,-0.12%3B40.7,-74")
	require.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, []models.Coordinates{
		models.NewCoordinates(45.44, 12.33),
		models.NewCoordinates(51.5, -0.12),
		models.NewCoordinates(40.7, -74),
	}, service.coords)

	assert.JSONEq(t, `{
		"locations": 3,
		"conditions": [{"time": 1753448400, "temperature": 21.5}]
	}`, string(body))
}

func TestHandleForecastToday(t *testing.T) {
	service := &fakeService{views: sampleViews()}
	app := newTestApp(service, nil)

	status, body := doGet(t, app, "/v1/forecast/today?loc=45.44,12.33")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "2025-07-25", service.day.Format(time.DateOnly))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "2025-07-25", resp["date"])
	assert.EqualValues(t, 1, resp["locations"])

	status, _ = doGet(t, app, "/v1/forecast/today?loc=45.44,12.33&date=2025-07-27")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, time.Date(2025, 7, 27, 0, 0, 0, 0, time.UTC), service.day)

	status, _ = doGet(t, app, "/v1/forecast/today?loc=45.44,12.33&date=27/07/2025")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleForecastWeek_BadInput(t *testing.T) {
	service := &fakeService{}
	app := newTestApp(service, nil)

	for _, target := range []string{
		"/v1/forecast/week",
		"/v1/forecast/week?loc=",
		"/v1/forecast/week?loc=abc",
		"/v1/forecast/week?loc=95,12",
		"/v1/forecast/week?loc=45,200",
	} {
		status, body := doGet(t, app, target)
		assert.Equal(t, fiber.StatusBadRequest, status, target)
		assert.Contains(t, string(body), `"error"`, target)
	}

	assert.Nil(t, service.coords)
}

func TestHandleForecastWeek_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "transport",
			err:    &models.TransportError{Status: 500, StatusText: "Internal Server Error"},
			status: fiber.StatusBadGateway,
		},
		{
			name:   "malformed",
			err:    &models.MalformedResponseError{Section: models.SectionDaily},
			status: fiber.StatusBadGateway,
		},
		{
			name:   "timeout",
			err:    &models.TransportError{StatusText: "deadline", Err: context.DeadlineExceeded},
			status: fiber.StatusGatewayTimeout,
		},
		{
			name:   "unknown",
			err:    context.Canceled,
			status: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeService{err: tt.err}, nil)

			status, body := doGet(t, app, "/v1/forecast/week?loc=45.44,12.33")
			assert.Equal(t, tt.status, status)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}

func TestHandleProxy(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(`{"currently": {"temperature": 8.5}}`)}
	app := newTestApp(&fakeService{}, fetcher)

	status, body := doGet(t, app, "/proxy?url=45.44,12.33&units=si")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"currently": {"temperature": 8.5}}`, string(body))
	assert.Equal(t, models.NewCoordinates(45.44, 12.33), fetcher.coords)
	assert.Equal(t, "si", fetcher.units)

	status, _ = doGet(t, app, "/proxy?url=45.44%2C12.33%2C1700000000")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(1700000000), fetcher.coords.Time.Unix())
	assert.Empty(t, fetcher.units)
}

func TestHandleProxy_Errors(t *testing.T) {
	fetcher := &fakeFetcher{err: &models.TransportError{Status: 403, StatusText: "Forbidden"}}
	app := newTestApp(&fakeService{}, fetcher)

	status, _ := doGet(t, app, "/proxy?url=45.44,12.33")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doGet(t, app, "/proxy")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doGet(t, app, "/proxy?url=45.44,12.33&units=kelvin")
	assert.Equal(t, fiber.StatusBadRequest, status)

	fetcher.err = &models.MalformedResponseError{Err: io.ErrUnexpectedEOF}
	status, _ = doGet(t, app, "/proxy?url=45.44,12.33")
	assert.Equal(t, fiber.StatusBadGateway, status)
}

func TestUnreachableProviderDoesNotExposeAPIKey(t *testing.T) {
	mockServer := httptest.NewServer(nethttp.HandlerFunc(func(nethttp.ResponseWriter, *nethttp.Request) {}))
	baseURL := mockServer.URL + "/forecast"
	mockServer.Close()

	repo, err := repositories.NewForecastIORepository(
		repositories.Endpoint{APIKey: "SUPERSECRETKEY", BaseURL: baseURL},
		logger.NewNop(),
		&nethttp.Client{},
		time.Second,
	)
	require.NoError(t, err)

	app := newTestApp(forecast.NewCoordinator(repo, nil, logger.NewNop()), repo)

	for _, target := range []string{
		"/v1/forecast/week?loc=45,12",
		"/proxy?url=45,12",
	} {
		status, body := doGet(t, app, target)
		assert.Equal(t, fiber.StatusBadGateway, status, target)
		assert.NotContains(t, string(body), "SUPERSECRETKEY", target)
		assert.Contains(t, string(body), "transport error", target)
	}
}

func TestProxyNotRegisteredWithoutFetcher(t *testing.T) {
	app := newTestApp(&fakeService{}, nil)

	status, _ := doGet(t, app, "/proxy?url=45.44,12.33")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHealthcheck(t *testing.T) {
	app := newTestApp(&fakeService{}, nil)

	status, _ := doGet(t, app, "/manage/health")
	assert.Equal(t, fiber.StatusOK, status)
}
