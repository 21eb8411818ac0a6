package weather

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	weatherRows  map[string]*WeatherSnapshot
	forecastRows map[string]*ForecastSnapshot

	weatherSaves  int
	forecastSaves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		weatherRows:  make(map[string]*WeatherSnapshot),
		forecastRows: make(map[string]*ForecastSnapshot),
	}
}

func (f *fakeStore) Weather(_ context.Context, city string) (*WeatherSnapshot, error) {
	snap, ok := f.weatherRows[strings.ToLower(city)]
	if !ok {
		return nil, ErrNoSnapshot
	}
	cp := *snap
	return &cp, nil
}

func (f *fakeStore) SaveWeather(_ context.Context, snap *WeatherSnapshot) error {
	f.weatherSaves++
	cp := *snap
	f.weatherRows[strings.ToLower(snap.City)] = &cp
	return nil
}

func (f *fakeStore) Forecast(_ context.Context, city string) (*ForecastSnapshot, error) {
	snap, ok := f.forecastRows[strings.ToLower(city)]
	if !ok {
		return nil, ErrNoSnapshot
	}
	cp := *snap
	return &cp, nil
}

func (f *fakeStore) SaveForecast(_ context.Context, snap *ForecastSnapshot) error {
	f.forecastSaves++
	cp := *snap
	f.forecastRows[strings.ToLower(snap.Bundle.City)] = &cp
	return nil
}

type fakeProvider struct {
	obs     CurrentObservation
	obsErr  error
	uv      float64
	uvErr   error
	feed    ForecastFeed
	feedErr error
	place   Place

	currentCalls  int
	uvCalls       int
	forecastCalls int
}

func (f *fakeProvider) CurrentWeather(context.Context, string) (CurrentObservation, error) {
	f.currentCalls++
	return f.obs, f.obsErr
}

func (f *fakeProvider) Forecast(context.Context, string) (ForecastFeed, error) {
	f.forecastCalls++
	return f.feed, f.feedErr
}

func (f *fakeProvider) UVIndex(context.Context, float64, float64) (float64, error) {
	f.uvCalls++
	return f.uv, f.uvErr
}

func (f *fakeProvider) ReverseGeocode(context.Context, float64, float64) (Place, error) {
	return f.place, nil
}

func newTestService(store SnapshotStore, provider Provider, now time.Time) *Service {
	svc := NewService(store, provider, DefaultFreshnessWindow, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func parisObservation() CurrentObservation {
	return CurrentObservation{
		City:        "Paris",
		Country:     "FR",
		Lat:         48.85,
		Lon:         2.35,
		Temperature: 18.5,
		Description: "clear sky",
		Humidity:    55,
		WindSpeed:   3.1,
		Icon:        "01d",
		Sunrise:     1700000000,
		Sunset:      1700040000,
	}
}

func TestCurrentWeatherServesFreshCacheWithoutUpstream(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.weatherRows["paris"] = &WeatherSnapshot{
		City:        "Paris",
		Country:     "FR",
		Temperature: 17.0,
		CapturedAt:  now.Add(-5 * time.Minute),
	}
	provider := &fakeProvider{}
	svc := newTestService(store, provider, now)

	snap, origin, err := svc.CurrentWeather(context.Background(), "paris")
	require.NoError(t, err)

	assert.Equal(t, OriginCache, origin)
	assert.Equal(t, "Paris", snap.City)
	assert.Equal(t, 17.0, snap.Temperature)
	assert.Zero(t, provider.currentCalls, "cache hit must be side-effect-free")
	assert.Zero(t, provider.uvCalls)
	assert.Zero(t, store.weatherSaves)
}

func TestCurrentWeatherRefreshesExpiredSnapshot(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.weatherRows["paris"] = &WeatherSnapshot{
		City:       "Paris",
		CapturedAt: now.Add(-DefaultFreshnessWindow),
	}
	provider := &fakeProvider{obs: parisObservation(), uv: 4.5}
	svc := newTestService(store, provider, now)

	snap, origin, err := svc.CurrentWeather(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, OriginFresh, origin)
	assert.Equal(t, 18.5, snap.Temperature)
	assert.Equal(t, 1, provider.currentCalls)
	assert.Equal(t, 1, store.weatherSaves)
	require.NotNil(t, snap.UVIndex)
	assert.Equal(t, 4.5, *snap.UVIndex)
	assert.Equal(t, now, snap.CapturedAt)

	// Immediately repeating the call inside the window is a cache hit with
	// identical data and no second upstream call.
	again, origin, err := svc.CurrentWeather(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, origin)
	assert.Equal(t, snap, again)
	assert.Equal(t, 1, provider.currentCalls)
	assert.Equal(t, 1, store.weatherSaves)
}

func TestCurrentWeatherFetchesOnMiss(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	provider := &fakeProvider{obs: parisObservation(), uv: 2.0}
	svc := newTestService(store, provider, now)

	_, origin, err := svc.CurrentWeather(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, OriginFresh, origin)
	assert.Equal(t, 1, provider.currentCalls)
	assert.Equal(t, 1, store.weatherSaves)
}

func TestCurrentWeatherRejectsEmptyCity(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{}
	svc := newTestService(store, provider, time.Now().UTC())

	_, _, err := svc.CurrentWeather(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyCity)
	assert.Zero(t, provider.currentCalls)
}

func TestCurrentWeatherSwallowsUVFailure(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	provider := &fakeProvider{obs: parisObservation(), uvErr: ErrUpstreamUnavailable}
	svc := newTestService(store, provider, now)

	snap, origin, err := svc.CurrentWeather(context.Background(), "Paris")
	require.NoError(t, err, "uv sub-fetch failure must never fail the weather fetch")
	assert.Equal(t, OriginFresh, origin)
	assert.Nil(t, snap.UVIndex)
	assert.Nil(t, store.weatherRows["paris"].UVIndex)
	assert.Equal(t, 1, provider.uvCalls)
}

func TestCurrentWeatherDoesNotServeStaleOnUpstreamFailure(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.weatherRows["paris"] = &WeatherSnapshot{
		City:       "Paris",
		CapturedAt: now.Add(-time.Hour),
	}
	provider := &fakeProvider{obsErr: ErrUpstreamUnavailable}
	svc := newTestService(store, provider, now)

	_, _, err := svc.CurrentWeather(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Zero(t, store.weatherSaves)
}

func TestCurrentWeatherPropagatesUnknownCity(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{obsErr: ErrCityNotFound}
	svc := newTestService(store, provider, time.Now().UTC())

	_, _, err := svc.CurrentWeather(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestForecastAggregatesAndCaches(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	base := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{feed: ForecastFeed{
		City:    "Paris",
		Country: "FR",
		Samples: []ForecastSample{
			sampleAt(base, 5, 10),
			sampleAt(base.Add(3*time.Hour), 3, 12),
			sampleAt(base.AddDate(0, 0, 1), 4, 9),
		},
	}}
	svc := newTestService(store, provider, now)

	bundle, origin, err := svc.Forecast(context.Background(), "paris")
	require.NoError(t, err)

	assert.Equal(t, OriginFresh, origin)
	require.Len(t, bundle.Forecasts, 2)
	assert.Equal(t, 3.0, bundle.Forecasts[0].TempMin)
	assert.Equal(t, 12.0, bundle.Forecasts[0].TempMax)
	assert.Equal(t, 1, store.forecastSaves)

	// Second read within the window comes from the store.
	cached, origin, err := svc.Forecast(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, origin)
	assert.Equal(t, bundle, cached)
	assert.Equal(t, 1, provider.forecastCalls)
}

func TestForecastRejectsEmptyCity(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeProvider{}, time.Now().UTC())

	_, _, err := svc.Forecast(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyCity)
}

func TestForecastSurfacesUpstreamFailure(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.forecastRows["paris"] = &ForecastSnapshot{
		Bundle:     ForecastBundle{City: "Paris"},
		CapturedAt: now.Add(-time.Hour),
	}
	provider := &fakeProvider{feedErr: errors.New("connection refused")}
	svc := newTestService(store, provider, now)

	_, _, err := svc.Forecast(context.Background(), "Paris")
	require.Error(t, err)
	assert.Zero(t, store.forecastSaves)
}
