package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"forecastio/internal/models"
	"forecastio/pkg/logger"
)

const (
	ForecastIOBaseURL = "https://api.forecast.io/forecast"
)

var (
	errEmptyBody = errors.New("empty response body")

	units = map[string]bool{"auto": true, "ca": true, "uk": true, "uk2": true, "us": true, "si": true}
)

// ValidUnits reports whether u is a units value the provider understands.
// The empty string means the provider default.
func ValidUnits(u string) bool {
	return u == "" || units[u]
}

// Endpoint is the endpoint configuration. Exactly one of APIKey and ProxyURL
// must be set. With a proxy the key stays on the proxy side and the
// coordinates travel in the "url" query parameter.
type Endpoint struct {
	APIKey   string
	ProxyURL string
	BaseURL  string
	Units    string
}

func (e Endpoint) IsProxy() bool {
	return e.ProxyURL != ""
}

func (e Endpoint) validate() (*url.URL, error) {
	apiKey := strings.TrimSpace(e.APIKey)
	proxyURL := strings.TrimSpace(e.ProxyURL)

	switch {
	case apiKey == "" && proxyURL == "":
		return nil, &models.ConfigurationError{Reason: "API key or proxy URL must be set"}
	case apiKey != "" && proxyURL != "":
		return nil, &models.ConfigurationError{Reason: "API key and proxy URL are mutually exclusive"}
	}

	if !ValidUnits(e.Units) {
		return nil, &models.ConfigurationError{Reason: fmt.Sprintf("unknown units %q", e.Units)}
	}

	if apiKey != "" {
		return nil, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &models.ConfigurationError{Reason: fmt.Sprintf("invalid proxy URL %q", e.ProxyURL)}
	}

	return u, nil
}

type ForecastIORepository struct {
	endpoint   Endpoint
	proxy      *url.URL
	timeout    time.Duration
	httpClient HTTPClient
	l          *logger.Logger
}

// NewForecastIORepository validates the endpoint before anything touches the
// network. A zero timeout leaves deadlines to the caller's context.
func NewForecastIORepository(
	endpoint Endpoint,
	l *logger.Logger,
	httpClient HTTPClient,
	timeout time.Duration,
) (*ForecastIORepository, error) {
	proxy, err := endpoint.validate()
	if err != nil {
		return nil, err
	}

	if endpoint.BaseURL == "" {
		endpoint.BaseURL = ForecastIOBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &ForecastIORepository{
		endpoint:   endpoint,
		proxy:      proxy,
		timeout:    timeout,
		httpClient: httpClient,
		l:          l,
	}, nil
}

func (f *ForecastIORepository) Name() string {
	if f.endpoint.IsProxy() {
		return "forecast.io-proxy"
	}
	return "forecast.io"
}

// BuildURL returns {base}/{key}/{lat},{lon}[,{time}] or
// {proxy}?url={lat},{lon}[,{time}], with units appended when configured.
func (f *ForecastIORepository) BuildURL(c models.Coordinates) string {
	return f.buildURL(c, f.endpoint.Units)
}

func (f *ForecastIORepository) buildURL(c models.Coordinates, units string) string {
	if f.proxy != nil {
		u := *f.proxy
		q := u.Query()
		q.Set("url", c.String())
		if units != "" {
			q.Set("units", units)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	requestURL := fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(f.endpoint.BaseURL, "/"),
		url.PathEscape(strings.TrimSpace(f.endpoint.APIKey)),
		c.String(),
	)
	if units != "" {
		requestURL += "?units=" + url.QueryEscape(units)
	}

	return requestURL
}

// FetchForecast issues one GET and decodes the body. Non-2xx statuses and
// round-trip failures are *models.TransportError; empty or unparsable bodies
// are *models.MalformedResponseError.
func (f *ForecastIORepository) FetchForecast(ctx context.Context, c models.Coordinates) (models.Payload, error) {
	var payload models.Payload

	body, err := f.FetchRaw(ctx, c, "")
	if err != nil {
		return payload, err
	}

	if err = json.Unmarshal(body, &payload); err != nil {
		return payload, &models.MalformedResponseError{Err: fmt.Errorf("failed to parse JSON response: %w", err)}
	}

	f.l.Debug("parsed forecast.io API response", map[string]any{
		"coordinates": c.String(),
		"currently":   payload.Currently != nil,
		"hourly":      payload.Hourly != nil,
		"daily":       payload.Daily != nil,
	})

	return payload, nil
}

// roundTripError drops the request URL from a client error. In direct mode
// the URL carries the API key, and the error text ends up in responses and
// logs.
func roundTripError(err error) *models.TransportError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
		if urlErr.Timeout() && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
	}

	return &models.TransportError{
		StatusText: fmt.Sprintf("request failed: %v", err),
		Err:        err,
	}
}

// FetchRaw returns the verbatim response body. An empty units value means
// the configured one.
func (f *ForecastIORepository) FetchRaw(ctx context.Context, c models.Coordinates, units string) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if units == "" {
		units = f.endpoint.Units
	}
	if !ValidUnits(units) {
		return nil, fmt.Errorf("unknown units %q", units)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	f.l.Info("making forecast.io API request", map[string]any{
		"repository":  f.Name(),
		"coordinates": c.String(),
		"units":       units,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.buildURL(c, units), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, roundTripError(err)
	}
	defer resp.Body.Close()

	f.l.Info("received forecast.io API response", map[string]any{
		"repository": f.Name(),
		"status":     resp.StatusCode,
		"statusText": resp.Status,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.TransportError{
			Status:     resp.StatusCode,
			StatusText: fmt.Sprintf("failed to read response body: %v", err),
			Err:        err,
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &models.TransportError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &models.MalformedResponseError{Err: errEmptyBody}
	}

	return body, nil
}
