package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// matrixEntry mirrors one day of the month-matrix API.
type matrixEntry struct {
	ShowToAffiliates bool    `json:"show_to_affiliates"`
	Origin           string  `json:"origin"`
	Destination      string  `json:"destination"`
	DepartDate       string  `json:"depart_date"`
	NumberOfChanges  int     `json:"number_of_changes"`
	Value            float64 `json:"value"`
	Distance         int     `json:"distance"`
	Actual           bool    `json:"actual"`
}

var errUpstreamUnavailable = errors.New("upstream unavailable")

// MatrixMock simulates the month-matrix API with random latency and failures.
type MatrixMock struct {
	mu          sync.Mutex
	rng         *rand.Rand
	failureRate float64
	keyed       bool
	logger      *slog.Logger
}

// NewMatrixMock creates a new MatrixMock. keyed selects the oldest payload
// revision where data is an object keyed by "ORIGIN-DESTINATION".
func NewMatrixMock(failureRate float64, keyed bool, logger *slog.Logger) *MatrixMock {
	return &MatrixMock{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		failureRate: failureRate,
		keyed:       keyed,
		logger:      logger,
	}
}

// search simulates a matrix lookup with random latency and potential failures.
func (p *MatrixMock) search(ctx context.Context, origin, destination string, month time.Time) ([]matrixEntry, error) {
	// Simulate random latency (50ms to 250ms)
	latency := time.Duration(50+p.intn(200)) * time.Millisecond

	select {
	case <-time.After(latency):
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}

	if p.float() < p.failureRate {
		return nil, errUpstreamUnavailable
	}

	return p.generateMatrix(origin, destination, month), nil
}

// generateMatrix returns one entry per day of month. Some days have no fare.
func (p *MatrixMock) generateMatrix(origin, destination string, month time.Time) []matrixEntry {
	var entries []matrixEntry
	for day := month; day.Month() == month.Month(); day = day.AddDate(0, 0, 1) {
		if p.float() < 0.2 {
			continue
		}
		entries = append(entries, matrixEntry{
			ShowToAffiliates: true,
			Origin:           origin,
			Destination:      destination,
			DepartDate:       day.Format(time.DateOnly),
			NumberOfChanges:  p.intn(3),
			Value:            p.randomPrice(60, 450),
			Distance:         2475,
			Actual:           true,
		})
	}
	return entries
}

func (p *MatrixMock) randomPrice(lo, hi float64) float64 {
	price := lo + p.float()*(hi-lo)
	return float64(int(price))
}

// rand.Rand is not safe for concurrent use.
func (p *MatrixMock) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

func (p *MatrixMock) float() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()
}

// ServeHTTP handles GET /v2/prices/month-matrix.
func (p *MatrixMock) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := strings.ToUpper(strings.TrimSpace(q.Get("origin")))
	destination := strings.ToUpper(strings.TrimSpace(q.Get("destination")))
	monthStr := strings.TrimSpace(q.Get("month"))

	if q.Get("token") == "" {
		writeJSON(w, p.logger, http.StatusUnauthorized, map[string]any{"success": false, "error": "Unauthorized"})
		return
	}

	if origin == "" || destination == "" || monthStr == "" {
		writeJSON(w, p.logger, http.StatusBadRequest, map[string]any{"success": false, "error": "missing required parameters"})
		return
	}

	month, err := time.Parse("2006-01", monthStr)
	if err != nil {
		writeJSON(w, p.logger, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid month"})
		return
	}

	entries, err := p.search(r.Context(), origin, destination, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	var data any = entries
	if p.keyed {
		data = map[string][]matrixEntry{origin + "-" + destination: entries}
	}

	writeJSON(w, p.logger, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
