package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gianlucanapo/terrazzo-manager/internal/weather"
)

// notAvailable is rendered whenever the weather provider cannot answer.
var notAvailable = map[string]string{"status": "N/D"}

// WeatherHandler serves GET /weather: current conditions at the terrace.
// Provider failures degrade to an N/D body, never a 5xx.
func WeatherHandler(logger *logrus.Logger, client *weather.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur, err := client.CurrentWeather(r.Context())
		if err != nil {
			logger.WithError(err).Warn("weather lookup failed")
			writeJSON(w, http.StatusOK, notAvailable)
			return
		}
		writeJSON(w, http.StatusOK, cur)
	}
}

// ForecastHandler serves GET /weather/forecast?date=YYYY-MM-DD.
func ForecastHandler(logger *logrus.Logger, client *weather.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			http.Error(w, "date query parameter is required", http.StatusBadRequest)
			return
		}
		fc, err := client.ForecastFor(r.Context(), date)
		if err != nil {
			logger.WithError(err).Warn("forecast lookup failed")
			writeJSON(w, http.StatusOK, notAvailable)
			return
		}
		writeJSON(w, http.StatusOK, fc)
	}
}
