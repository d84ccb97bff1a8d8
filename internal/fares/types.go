package fares

import "context"

// SearchRequest is a normalized flight search.
type SearchRequest struct {
	Origin      string
	Destination string
	Date        string // YYYY-MM-DD
}

// Month returns the YYYY-MM prefix of Date.
func (r SearchRequest) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}

// FareEntry is one day of the upstream price matrix.
// A nil Value means the upstream did not report a usable price.
type FareEntry struct {
	DepartDate string
	Value      *float64
}

// Trend is the direction of the price forecast.
type Trend string

const (
	TrendIncrease Trend = "increase"
	TrendDecrease Trend = "decrease"
)

// FareResult is the cheapest fare decorated with forecast fields.
type FareResult struct {
	Date            string  `json:"date"`
	Savings         float64 `json:"savings"`
	ForecastPercent int     `json:"forecastPercent"`
	ForecastDays    int     `json:"forecastDays"`
	ForecastTrend   Trend   `json:"forecastTrend"`
	AISavings       float64 `json:"aiSavings"`
	AIDays          int     `json:"aiDays"`
}

// MatrixFetcher retrieves the fare matrix for a route and month.
type MatrixFetcher interface {
	FetchMatrix(ctx context.Context, origin, destination, month string) ([]FareEntry, error)
}

// AirportDirectory reports whether an IATA code is known.
type AirportDirectory interface {
	Known(code string) bool
}
