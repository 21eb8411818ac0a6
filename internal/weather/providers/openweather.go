package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"meteoproxy/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface against
// OpenWeatherMap: current weather, 5-day forecast feed, UV index and reverse
// geocoding all go through the same resilience path.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	geoURL  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		geoURL:  "https://api.openweathermap.org/geo/1.0",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// get runs one resilient GET and maps transport-level failures onto the
// domain error taxonomy. The response is returned for any terminal status;
// callers own the status check and the body.
func (p *OpenWeatherProvider) get(ctx context.Context, u string) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", weather.ErrUpstreamUnavailable, err)
	}
	return resp, nil
}

func (p *OpenWeatherProvider) CurrentWeather(ctx context.Context, city string) (weather.CurrentObservation, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	resp, err := p.get(ctx, fmt.Sprintf("%s/weather?%s", p.baseURL, values.Encode()))
	if err != nil {
		return weather.CurrentObservation{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.CurrentObservation{}, weather.ErrCityNotFound
	case resp.StatusCode != http.StatusOK:
		return weather.CurrentObservation{}, fmt.Errorf("%w: status %d", weather.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Sys struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.CurrentObservation{}, fmt.Errorf("decode weather payload: %w", err)
	}

	obs := weather.CurrentObservation{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Lat:         payload.Coord.Lat,
		Lon:         payload.Coord.Lon,
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Sunrise:     payload.Sys.Sunrise,
		Sunset:      payload.Sys.Sunset,
	}
	if len(payload.Weather) > 0 {
		obs.Description = payload.Weather[0].Description
		obs.Icon = payload.Weather[0].Icon
	}
	return obs, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string) (weather.ForecastFeed, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	resp, err := p.get(ctx, fmt.Sprintf("%s/forecast?%s", p.baseURL, values.Encode()))
	if err != nil {
		return weather.ForecastFeed{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.ForecastFeed{}, weather.ErrCityNotFound
	case resp.StatusCode != http.StatusOK:
		return weather.ForecastFeed{}, fmt.Errorf("%w: status %d", weather.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload struct {
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				TempMin  float64 `json:"temp_min"`
				TempMax  float64 `json:"temp_max"`
				Humidity int     `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
				Icon        string `json:"icon"`
			} `json:"weather"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ForecastFeed{}, fmt.Errorf("decode forecast payload: %w", err)
	}

	feed := weather.ForecastFeed{
		City:    payload.City.Name,
		Country: payload.City.Country,
		Samples: make([]weather.ForecastSample, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		sample := weather.ForecastSample{
			Timestamp: time.Unix(item.Dt, 0).UTC(),
			TempMin:   item.Main.TempMin,
			TempMax:   item.Main.TempMax,
			Humidity:  item.Main.Humidity,
			WindSpeed: item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
			sample.Icon = item.Weather[0].Icon
		}
		feed.Samples = append(feed.Samples, sample)
	}
	return feed, nil
}

func (p *OpenWeatherProvider) UVIndex(ctx context.Context, lat, lon float64) (float64, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", p.apiKey)

	resp, err := p.get(ctx, fmt.Sprintf("%s/uvi?%s", p.baseURL, values.Encode()))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", weather.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode uv payload: %w", err)
	}
	return payload.Value, nil
}

func (p *OpenWeatherProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (weather.Place, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("limit", "1")
	values.Set("appid", p.apiKey)

	resp, err := p.get(ctx, fmt.Sprintf("%s/reverse?%s", p.geoURL, values.Encode()))
	if err != nil {
		return weather.Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.Place{}, fmt.Errorf("%w: status %d", weather.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Place{}, fmt.Errorf("decode geocode payload: %w", err)
	}
	if len(payload) == 0 {
		return weather.Place{}, weather.ErrCityNotFound
	}
	return weather.Place{City: payload[0].Name, Country: payload[0].Country}, nil
}
