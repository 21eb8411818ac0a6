package weather

import (
	"time"
)

// Origin indicates whether a response was served from the store without a
// refresh, or from an upstream fetch just performed.
type Origin string

const (
	OriginCache Origin = "cache"
	OriginFresh Origin = "fresh"
)

// WeatherSnapshot is the cached current-weather view for one city. There is
// at most one live row per city name (case-insensitive); every refresh
// replaces all fields and resets CapturedAt.
type WeatherSnapshot struct {
	City        string    `json:"city" db:"city_name"`
	Country     string    `json:"country" db:"country"`
	Temperature float64   `json:"temperature" db:"temperature"`
	Description string    `json:"description" db:"description"`
	Humidity    int       `json:"humidity" db:"humidity"`
	WindSpeed   float64   `json:"windSpeed" db:"wind_speed"`
	Icon        string    `json:"icon" db:"icon"`
	Sunrise     *int64    `json:"sunrise,omitempty" db:"sunrise"`
	Sunset      *int64    `json:"sunset,omitempty" db:"sunset"`
	UVIndex     *float64  `json:"uvIndex,omitempty" db:"uv_index"`
	CapturedAt  time.Time `json:"timestamp" db:"captured_at"`
}

// DayBucket is the aggregated forecast for one calendar date, folded from one
// or more raw timestamped samples.
type DayBucket struct {
	Date        string  `json:"date"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Samples     int     `json:"samples"`
}

// ForecastBundle is the aggregated multi-day forecast returned to clients and
// serialized as one blob per city in the store. City and country labels come
// from the upstream envelope, not from the samples.
type ForecastBundle struct {
	City      string      `json:"city"`
	Country   string      `json:"country"`
	Forecasts []DayBucket `json:"forecasts"`
}

// ForecastSnapshot is one cached forecast row: the bundle plus the time it
// was captured.
type ForecastSnapshot struct {
	Bundle     ForecastBundle
	CapturedAt time.Time
}

// ForecastSample is a single raw timestamped entry from the upstream forecast
// feed, assumed pre-sorted ascending by time.
type ForecastSample struct {
	Timestamp   time.Time
	TempMin     float64
	TempMax     float64
	Description string
	Icon        string
	Humidity    int
	WindSpeed   float64
}

// ForecastFeed is the upstream forecast envelope: canonical city/country
// labels plus the ordered sample list.
type ForecastFeed struct {
	City    string
	Country string
	Samples []ForecastSample
}

// CurrentObservation is the normalized result of a primary current-weather
// fetch. Coordinates are kept for the secondary UV-index call.
type CurrentObservation struct {
	City        string
	Country     string
	Lat         float64
	Lon         float64
	Temperature float64
	Description string
	Humidity    int
	WindSpeed   float64
	Icon        string
	Sunrise     int64
	Sunset      int64
}

// Place is a reverse-geocoding result.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}
