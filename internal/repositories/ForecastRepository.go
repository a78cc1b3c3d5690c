package repositories

import (
	"context"
	"net/http"

	"forecastio/config"
	"forecastio/internal/models"
	"forecastio/pkg/logger"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ForecastRepository fetches one location's forecast payload.
type ForecastRepository interface {
	Name() string
	BuildURL(c models.Coordinates) string
	FetchForecast(ctx context.Context, c models.Coordinates) (models.Payload, error)
}

// InitForecastRepository builds the repository described by cfg.Forecast.
// It fails with a *models.ConfigurationError when the endpoint is unusable.
func InitForecastRepository(cfg *config.Config, l *logger.Logger, httpClient HTTPClient) (*ForecastIORepository, error) {
	endpoint := Endpoint{
		APIKey:   cfg.Forecast.APIKey,
		ProxyURL: cfg.Forecast.ProxyURL,
		BaseURL:  cfg.Forecast.BaseURL,
		Units:    cfg.Forecast.Units,
	}

	return NewForecastIORepository(endpoint, l, httpClient, cfg.Forecast.RequestTimeout)
}
