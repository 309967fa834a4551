// internal/weather/weather.go
//
// Client for the Open-Meteo forecast API, pinned to the terrace's location
// in Naples. Lookups are best-effort: callers render "N/D" on error rather
// than failing the page.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	latitude  = 40.8518
	longitude = 14.2681

	defaultBaseURL = "https://api.open-meteo.com"
)

// Client talks to Open-Meteo. The zero value is not usable; use NewClient.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL points the client at a different API host. Tests use
// it with an httptest server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// Current is the present conditions at the terrace.
type Current struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
	WeatherCode int     `json:"weather_code"`
	Icon        string  `json:"icon"`
}

// DayForecast is the daily outlook for one date.
type DayForecast struct {
	Date       string  `json:"date"`
	MaxTemp    float64 `json:"max_temp"`
	MinTemp    float64 `json:"min_temp"`
	RainLikely bool    `json:"rain_likely"`
	Icon       string  `json:"icon"`
}

type currentResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

type dailyResponse struct {
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// CurrentWeather fetches the present conditions.
func (c *Client) CurrentWeather(ctx context.Context) (*Current, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%g&longitude=%g&current_weather=true",
		c.baseURL, latitude, longitude)

	var resp currentResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	return &Current{
		Temperature: resp.CurrentWeather.Temperature,
		WindSpeed:   resp.CurrentWeather.WindSpeed,
		WeatherCode: resp.CurrentWeather.WeatherCode,
		Icon:        iconFor(resp.CurrentWeather.WeatherCode),
	}, nil
}

// ForecastFor fetches the daily outlook for date (formatted "2006-01-02").
func (c *Client) ForecastFor(ctx context.Context, date string) (*DayForecast, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	url := fmt.Sprintf("%s/v1/forecast?latitude=%g&longitude=%g"+
		"&daily=weathercode,temperature_2m_max,temperature_2m_min"+
		"&timezone=Europe/Rome&start_date=%s&end_date=%s",
		c.baseURL, latitude, longitude, date, date)

	var resp dailyResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if len(resp.Daily.Time) == 0 {
		return nil, fmt.Errorf("no forecast for %s", date)
	}

	code := 0
	if len(resp.Daily.WeatherCode) > 0 {
		code = resp.Daily.WeatherCode[0]
	}
	fc := &DayForecast{
		Date:       resp.Daily.Time[0],
		RainLikely: code >= 51,
		Icon:       iconFor(code),
	}
	if len(resp.Daily.TempMax) > 0 {
		fc.MaxTemp = resp.Daily.TempMax[0]
	}
	if len(resp.Daily.TempMin) > 0 {
		fc.MinTemp = resp.Daily.TempMin[0]
	}
	return fc, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather api returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather decode failed: %w", err)
	}
	return nil
}

// iconFor maps WMO weather codes onto the handful of icons the UI renders.
func iconFor(code int) string {
	switch {
	case code == 0:
		return "☀️"
	case code <= 3:
		return "⛅"
	case code <= 48:
		return "🌫️"
	case code <= 67:
		return "🌧️"
	case code <= 77:
		return "❄️"
	case code <= 82:
		return "🌧️"
	default:
		return "⛈️"
	}
}
