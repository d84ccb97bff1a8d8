package fares

import "context"

// Forecast holds the price-trend fields attached to a result.
type Forecast struct {
	Percent   int
	Days      int
	Trend     Trend
	AISavings float64
	AIDays    int
}

// Forecaster predicts how the cheapest fare will move.
type Forecaster interface {
	Forecast(ctx context.Context, req SearchRequest, best FareEntry) (Forecast, error)
}

// StaticForecaster returns fixed placeholder values regardless of input.
type StaticForecaster struct{}

// Forecast implements Forecaster.
func (StaticForecaster) Forecast(context.Context, SearchRequest, FareEntry) (Forecast, error) {
	return Forecast{
		Percent:   80,
		Days:      3,
		Trend:     TrendIncrease,
		AISavings: 240,
		AIDays:    3,
	}, nil
}
