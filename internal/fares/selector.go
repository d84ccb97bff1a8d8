package fares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alex-user-go/cheapfare/internal/obs"
)

// Selector finds the cheapest departure day for a route and month.
type Selector struct {
	fetcher    MatrixFetcher
	forecaster Forecaster
	airports   AirportDirectory
	timeout    time.Duration
	metrics    *obs.Metrics
	logger     *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithForecaster replaces the placeholder forecaster.
func WithForecaster(f Forecaster) Option {
	return func(s *Selector) {
		s.forecaster = f
	}
}

// WithAirports enables IATA code checks against a directory.
func WithAirports(d AirportDirectory) Option {
	return func(s *Selector) {
		s.airports = d
	}
}

// NewSelector creates a new Selector.
func NewSelector(fetcher MatrixFetcher, timeout time.Duration, metrics *obs.Metrics, logger *slog.Logger, opts ...Option) *Selector {
	s := &Selector{
		fetcher:    fetcher,
		forecaster: StaticForecaster{},
		timeout:    timeout,
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectCheapest validates req, fetches the month matrix and returns the cheapest day.
func (s *Selector) SelectCheapest(ctx context.Context, req SearchRequest) (*FareResult, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	entries, err := s.fetcher.FetchMatrix(ctx, req.Origin, req.Destination, req.Month())
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrData) {
			level = slog.LevelError
			s.metrics.IncUpstreamErrors()
			var upstreamErr *UpstreamError
			if !errors.As(err, &upstreamErr) {
				err = &UpstreamError{Err: err}
			}
		}
		attrs := []any{
			"origin", req.Origin,
			"destination", req.Destination,
			"month", req.Month(),
			"error", err,
		}
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) && upstreamErr.StatusCode != 0 {
			attrs = append(attrs, "status", upstreamErr.StatusCode)
		}
		s.logger.Log(ctx, level, "fare matrix fetch failed", attrs...)
		return nil, err
	}

	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	best, ok := Cheapest(entries)
	if !ok {
		return nil, fmt.Errorf("%w: no entry has a numeric value", ErrData)
	}
	if best.DepartDate == "" {
		return nil, fmt.Errorf("%w: cheapest entry has no departure date", ErrData)
	}

	forecast, err := s.forecaster.Forecast(ctx, req, best)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	return &FareResult{
		Date:            best.DepartDate,
		Savings:         *best.Value,
		ForecastPercent: forecast.Percent,
		ForecastDays:    forecast.Days,
		ForecastTrend:   forecast.Trend,
		AISavings:       forecast.AISavings,
		AIDays:          forecast.AIDays,
	}, nil
}

// normalize upper-cases the airport codes and validates every field.
func (s *Selector) normalize(req SearchRequest) (SearchRequest, error) {
	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	req.Date = strings.TrimSpace(req.Date)

	if req.Origin == "" {
		return req, &ValidationError{Field: "from", Reason: "is required"}
	}
	if req.Destination == "" {
		return req, &ValidationError{Field: "to", Reason: "is required"}
	}
	if req.Date == "" {
		return req, &ValidationError{Field: "date", Reason: "is required"}
	}
	if _, err := time.Parse(time.DateOnly, req.Date); err != nil {
		return req, &ValidationError{Field: "date", Reason: "must be in YYYY-MM-DD format"}
	}

	if s.airports != nil {
		if !s.airports.Known(req.Origin) {
			return req, &ValidationError{Field: "from", Reason: "is not a known airport code"}
		}
		if !s.airports.Known(req.Destination) {
			return req, &ValidationError{Field: "to", Reason: "is not a known airport code"}
		}
	}

	return req, nil
}

// Cheapest returns the first entry with the lowest value.
// Entries without a value are skipped; ok is false when none has one.
func Cheapest(entries []FareEntry) (best FareEntry, ok bool) {
	for _, e := range entries {
		if e.Value == nil {
			continue
		}
		if !ok || *e.Value < *best.Value {
			best = e
			ok = true
		}
	}
	return best, ok
}
