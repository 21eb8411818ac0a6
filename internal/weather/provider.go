package weather

import (
	"context"
	"errors"
)

var (
	// ErrEmptyCity is returned when a request carries no city name. It is
	// rejected before any store or upstream access.
	ErrEmptyCity = errors.New("city name is required")

	// ErrCityNotFound is returned when upstream does not know the requested
	// city or coordinates.
	ErrCityNotFound = errors.New("city not found")

	// ErrUpstreamUnavailable covers network failures, 5xx responses, rate
	// limiting and an open circuit breaker.
	ErrUpstreamUnavailable = errors.New("weather provider unavailable")

	// ErrNoSnapshot is returned by the store when no cached row exists for a
	// city.
	ErrNoSnapshot = errors.New("no cached snapshot for city")
)

// Provider abstracts the upstream weather data source (OpenWeatherMap).
type Provider interface {
	CurrentWeather(ctx context.Context, city string) (CurrentObservation, error)
	Forecast(ctx context.Context, city string) (ForecastFeed, error)
	UVIndex(ctx context.Context, lat, lon float64) (float64, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}

// SnapshotStore is the contract the persistent store must satisfy for the
// cache-aside read/write protocol. Lookups are case-insensitive on city name;
// saves are atomic insert-or-replace keyed by city name, so concurrent
// refreshes of the same city can never produce a second row.
type SnapshotStore interface {
	Weather(ctx context.Context, city string) (*WeatherSnapshot, error)
	SaveWeather(ctx context.Context, snap *WeatherSnapshot) error
	Forecast(ctx context.Context, city string) (*ForecastSnapshot, error)
	SaveForecast(ctx context.Context, snap *ForecastSnapshot) error
}
