// internal/weather/weather_test.go
package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_weather":{"temperature":27.4,"windspeed":12.1,"weathercode":2}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	cur, err := c.CurrentWeather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 27.4, cur.Temperature)
	assert.Equal(t, 12.1, cur.WindSpeed)
	assert.Equal(t, 2, cur.WeatherCode)
	assert.Equal(t, "⛅", cur.Icon)
}

func TestForecastFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-07-18", r.URL.Query().Get("start_date"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"daily":{"time":["2026-07-18"],"weathercode":[61],
			"temperature_2m_max":[31.0],"temperature_2m_min":[22.5]}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	fc, err := c.ForecastFor(context.Background(), "2026-07-18")
	require.NoError(t, err)
	assert.Equal(t, "2026-07-18", fc.Date)
	assert.True(t, fc.RainLikely, "code 61 counts as rain")
	assert.Equal(t, 31.0, fc.MaxTemp)
	assert.Equal(t, 22.5, fc.MinTemp)
}

func TestForecastForRejectsBadDate(t *testing.T) {
	c := NewClientWithBaseURL("http://invalid.test")
	_, err := c.ForecastFor(context.Background(), "18/07/2026")
	assert.Error(t, err)
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	_, err := c.CurrentWeather(context.Background())
	assert.Error(t, err)
}
