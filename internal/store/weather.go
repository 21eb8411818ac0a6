package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meteoproxy/internal/weather"
)

// Weather returns the cached current-weather snapshot for a city, matched
// case-insensitively, or weather.ErrNoSnapshot.
func (s *Store) Weather(ctx context.Context, city string) (*weather.WeatherSnapshot, error) {
	var snap weather.WeatherSnapshot
	err := s.db.GetContext(ctx, &snap, `
		SELECT city_name, country, temperature, description, humidity,
		       wind_speed, icon, sunrise, sunset, uv_index, captured_at
		FROM weather_cache
		WHERE city_name = ?`, city)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, weather.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("select weather_cache: %w", err)
	}
	return &snap, nil
}

// SaveWeather inserts or fully replaces the snapshot row for the snapshot's
// city in one atomic statement. The city_name is updated too so the canonical
// upstream casing wins over whatever casing was stored before.
func (s *Store) SaveWeather(ctx context.Context, snap *weather.WeatherSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weather_cache
			(city_name, temperature, description, humidity, wind_speed,
			 icon, country, sunrise, sunset, uv_index, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(city_name) DO UPDATE SET
			city_name = excluded.city_name,
			temperature = excluded.temperature,
			description = excluded.description,
			humidity = excluded.humidity,
			wind_speed = excluded.wind_speed,
			icon = excluded.icon,
			country = excluded.country,
			sunrise = excluded.sunrise,
			sunset = excluded.sunset,
			uv_index = excluded.uv_index,
			captured_at = excluded.captured_at`,
		snap.City, snap.Temperature, snap.Description, snap.Humidity, snap.WindSpeed,
		snap.Icon, snap.Country, snap.Sunrise, snap.Sunset, snap.UVIndex, snap.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert weather_cache: %w", err)
	}
	return nil
}

// Forecast returns the cached forecast bundle for a city, matched
// case-insensitively, or weather.ErrNoSnapshot.
func (s *Store) Forecast(ctx context.Context, city string) (*weather.ForecastSnapshot, error) {
	var row struct {
		Data       string    `db:"forecast_data"`
		CapturedAt time.Time `db:"captured_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT forecast_data, captured_at
		FROM forecast_cache
		WHERE city_name = ?`, city)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, weather.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("select forecast_cache: %w", err)
	}

	var bundle weather.ForecastBundle
	if err := json.Unmarshal([]byte(row.Data), &bundle); err != nil {
		return nil, fmt.Errorf("decode forecast blob: %w", err)
	}
	return &weather.ForecastSnapshot{Bundle: bundle, CapturedAt: row.CapturedAt}, nil
}

// SaveForecast inserts or fully replaces the forecast row for the bundle's
// city. Day buckets are stored as one serialized blob, not individual rows.
func (s *Store) SaveForecast(ctx context.Context, snap *weather.ForecastSnapshot) error {
	blob, err := json.Marshal(snap.Bundle)
	if err != nil {
		return fmt.Errorf("encode forecast blob: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forecast_cache (city_name, forecast_data, captured_at)
		VALUES (?, ?, ?)
		ON CONFLICT(city_name) DO UPDATE SET
			city_name = excluded.city_name,
			forecast_data = excluded.forecast_data,
			captured_at = excluded.captured_at`,
		snap.Bundle.City, string(blob), snap.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert forecast_cache: %w", err)
	}
	return nil
}
