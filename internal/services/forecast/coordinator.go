package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"forecastio/internal/models"
	"forecastio/internal/repositories"
	"forecastio/pkg/logger"
)

// Coordinator fans requests for several locations out to the repository and
// gathers the answers in the order the locations were given.
type Coordinator struct {
	repo      repositories.ForecastRepository
	formatter models.Formatter
	l         *logger.Logger
}

// NewCoordinator wires a coordinator. A nil formatter means strftime in UTC.
func NewCoordinator(repo repositories.ForecastRepository, formatter models.Formatter, l *logger.Logger) *Coordinator {
	if formatter == nil {
		formatter = models.StrftimeFormatter{}
	}
	return &Coordinator{
		repo:      repo,
		formatter: formatter,
		l:         l,
	}
}

func (s *Coordinator) BuildURL(c models.Coordinates) string {
	return s.repo.BuildURL(c)
}

// FetchOne requests a single location.
func (s *Coordinator) FetchOne(ctx context.Context, c models.Coordinates) (models.Payload, error) {
	if err := c.Validate(); err != nil {
		return models.Payload{}, err
	}
	return s.repo.FetchForecast(ctx, c)
}

// FetchAll requests every location concurrently. payloads[i] belongs to
// coords[i]. The first failure cancels the outstanding requests and is
// returned unchanged; there are no partial results.
func (s *Coordinator) FetchAll(ctx context.Context, coords ...models.Coordinates) ([]models.Payload, error) {
	if len(coords) == 0 {
		return []models.Payload{}, nil
	}

	for _, c := range coords {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	batch := uuid.NewString()
	start := time.Now()

	s.l.Info("starting forecast fetch", map[string]any{
		"batch":      batch,
		"repository": s.repo.Name(),
		"locations":  len(coords),
	})

	payloads := make([]models.Payload, len(coords))
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range coords {
		g.Go(func() error {
			s.l.Debug("fetching forecast", map[string]any{"batch": batch, "index": i, "coordinates": c.String()})

			payload, err := s.repo.FetchForecast(gctx, c)
			if err != nil {
				return err
			}

			payloads[i] = payload
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.l.Warning("failed to fetch forecast batch", map[string]any{
			"batch": batch,
			"err":   err.Error(),
		})
		return nil, err
	}

	s.l.Info("completed forecast fetch", map[string]any{
		"batch":     batch,
		"locations": len(coords),
		"duration":  time.Since(start).String(),
	})

	return payloads, nil
}

// GetCurrentConditions returns one view per location, built from "currently".
func (s *Coordinator) GetCurrentConditions(ctx context.Context, coords ...models.Coordinates) ([]models.ForecastView, error) {
	payloads, err := s.FetchAll(ctx, coords...)
	if err != nil {
		return nil, err
	}

	views := make([]models.ForecastView, 0, len(payloads))
	for _, p := range payloads {
		if p.Currently == nil {
			return nil, &models.MalformedResponseError{Section: models.SectionCurrently}
		}
		views = append(views, models.NewForecastView(*p.Currently, s.formatter))
	}

	return views, nil
}

// GetForecastToday returns, for every location in turn, the hourly entries
// that fall on day's UTC calendar date. day is converted to UTC first, so a
// local midnight east of UTC selects the previous UTC day; pass a UTC date
// such as time.Date(y, m, d, 0, 0, 0, 0, time.UTC) to pick a calendar day.
func (s *Coordinator) GetForecastToday(ctx context.Context, day time.Time, coords ...models.Coordinates) ([]models.ForecastView, error) {
	payloads, err := s.FetchAll(ctx, coords...)
	if err != nil {
		return nil, err
	}

	views := []models.ForecastView{}
	for _, p := range payloads {
		hourly, ok := p.HourlyData()
		if !ok {
			return nil, &models.MalformedResponseError{Section: models.SectionHourly}
		}
		for _, v := range models.NewForecastViews(hourly, s.formatter) {
			if v.OnDate(day) {
				views = append(views, v)
			}
		}
	}

	return views, nil
}

// GetForecastWeek returns every daily entry, location after location.
func (s *Coordinator) GetForecastWeek(ctx context.Context, coords ...models.Coordinates) ([]models.ForecastView, error) {
	payloads, err := s.FetchAll(ctx, coords...)
	if err != nil {
		return nil, err
	}

	views := []models.ForecastView{}
	for _, p := range payloads {
		daily, ok := p.DailyData()
		if !ok {
			return nil, &models.MalformedResponseError{Section: models.SectionDaily}
		}
		views = append(views, models.NewForecastViews(daily, s.formatter)...)
	}

	return views, nil
}
