package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultFreshnessWindow is the maximum age a cached snapshot may have before
// it is treated as stale and a refresh is forced.
const DefaultFreshnessWindow = 10 * time.Minute

// refreshTimeout bounds a single upstream refresh, including the UV sub-fetch
// and the write-back.
const refreshTimeout = 30 * time.Second

// Service implements the cache-aside protocol: check store freshness, fetch
// from upstream on miss or expiry, normalize, write back, and tag the result
// with its origin. It holds no per-city state; uniqueness under concurrent
// refreshes is enforced by the store's upsert, not by locking here. Two
// concurrent misses for the same city may both call upstream and both upsert;
// the last write wins.
type Service struct {
	store    SnapshotStore
	provider Provider
	window   time.Duration
	logger   zerolog.Logger

	now func() time.Time
}

// NewService creates a Service. A non-positive window falls back to
// DefaultFreshnessWindow.
func NewService(store SnapshotStore, provider Provider, window time.Duration, logger zerolog.Logger) *Service {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Service{
		store:    store,
		provider: provider,
		window:   window,
		logger:   logger.With().Str("component", "weather").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CurrentWeather returns the current-weather snapshot for a city, tagged with
// its origin. A fresh-enough cached row is returned without any upstream call
// or write. Otherwise one primary upstream call is made, a UV-index sub-fetch
// is attempted (its failure only leaves the field absent), and the result is
// upserted before being returned.
func (s *Service) CurrentWeather(ctx context.Context, city string) (WeatherSnapshot, Origin, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return WeatherSnapshot{}, "", ErrEmptyCity
	}

	cached, err := s.store.Weather(ctx, city)
	switch {
	case err == nil:
		if age := s.now().Sub(cached.CapturedAt); age < s.window {
			s.logger.Debug().Str("city", city).Dur("age", age).Msg("weather cache hit")
			return *cached, OriginCache, nil
		}
	case !errors.Is(err, ErrNoSnapshot):
		return WeatherSnapshot{}, "", fmt.Errorf("read weather cache: %w", err)
	}

	// Miss or stale. The refresh runs on a detached context so a client
	// disconnect cannot abort the upsert halfway through a retry cycle.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	fetchID := uuid.NewString()
	s.logger.Info().Str("city", city).Str("fetch_id", fetchID).Msg("weather cache miss; fetching upstream")

	obs, err := s.provider.CurrentWeather(fetchCtx, city)
	if err != nil {
		return WeatherSnapshot{}, "", err
	}

	fresh := WeatherSnapshot{
		City:        obs.City,
		Country:     obs.Country,
		Temperature: obs.Temperature,
		Description: obs.Description,
		Humidity:    obs.Humidity,
		WindSpeed:   obs.WindSpeed,
		Icon:        obs.Icon,
		Sunrise:     &obs.Sunrise,
		Sunset:      &obs.Sunset,
		CapturedAt:  s.now(),
	}

	if uv, uvErr := s.provider.UVIndex(fetchCtx, obs.Lat, obs.Lon); uvErr != nil {
		s.logger.Warn().Str("city", city).Str("fetch_id", fetchID).Err(uvErr).
			Msg("uv index fetch failed; storing snapshot without it")
	} else {
		fresh.UVIndex = &uv
	}

	if err := s.store.SaveWeather(fetchCtx, &fresh); err != nil {
		return WeatherSnapshot{}, "", fmt.Errorf("save weather snapshot: %w", err)
	}
	return fresh, OriginFresh, nil
}

// Forecast returns the aggregated multi-day forecast for a city, tagged with
// its origin. The upstream sample feed is folded into day buckets before the
// write-back, so the store only ever holds the aggregated bundle.
func (s *Service) Forecast(ctx context.Context, city string) (ForecastBundle, Origin, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return ForecastBundle{}, "", ErrEmptyCity
	}

	cached, err := s.store.Forecast(ctx, city)
	switch {
	case err == nil:
		if age := s.now().Sub(cached.CapturedAt); age < s.window {
			s.logger.Debug().Str("city", city).Dur("age", age).Msg("forecast cache hit")
			return cached.Bundle, OriginCache, nil
		}
	case !errors.Is(err, ErrNoSnapshot):
		return ForecastBundle{}, "", fmt.Errorf("read forecast cache: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	fetchID := uuid.NewString()
	s.logger.Info().Str("city", city).Str("fetch_id", fetchID).Msg("forecast cache miss; fetching upstream")

	feed, err := s.provider.Forecast(fetchCtx, city)
	if err != nil {
		return ForecastBundle{}, "", err
	}

	bundle := AggregateForecast(feed.City, feed.Country, feed.Samples)
	snap := ForecastSnapshot{Bundle: bundle, CapturedAt: s.now()}
	if err := s.store.SaveForecast(fetchCtx, &snap); err != nil {
		return ForecastBundle{}, "", fmt.Errorf("save forecast snapshot: %w", err)
	}
	return bundle, OriginFresh, nil
}

// Locate resolves coordinates to a city/country pair. Pure upstream
// pass-through, never cached.
func (s *Service) Locate(ctx context.Context, lat, lon float64) (Place, error) {
	return s.provider.ReverseGeocode(ctx, lat, lon)
}
