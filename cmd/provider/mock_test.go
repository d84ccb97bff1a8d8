package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alex-user-go/cheapfare/internal/providers"
)

func TestMatrixMock_ServesParsableMatrix(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, keyed := range []bool{false, true} {
		mock := NewMatrixMock(0, keyed, logger)
		srv := httptest.NewServer(mock)

		client := providers.NewMatrixClient(srv.URL, "token", 2*time.Second)
		entries, err := client.FetchMatrix(context.Background(), "JFK", "LAX", "2024-02")
		srv.Close()

		if err != nil {
			t.Fatalf("keyed=%v: unexpected error: %v", keyed, err)
		}
		if len(entries) > 29 {
			t.Errorf("keyed=%v: got %d entries for February 2024, want at most 29", keyed, len(entries))
		}
		for _, e := range entries {
			if e.Value == nil || *e.Value < 60 || *e.Value > 450 {
				t.Errorf("keyed=%v: entry %s has value %v", keyed, e.DepartDate, e.Value)
			}
			if len(e.DepartDate) != 10 || e.DepartDate[:7] != "2024-02" {
				t.Errorf("keyed=%v: unexpected depart date %q", keyed, e.DepartDate)
			}
		}
	}
}

func TestMatrixMock_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		failureRate float64
		query       string
		wantStatus  int
	}{
		{name: "missing token", query: "origin=JFK&destination=LAX&month=2024-06", wantStatus: http.StatusUnauthorized},
		{name: "missing month", query: "origin=JFK&destination=LAX&token=t", wantStatus: http.StatusBadRequest},
		{name: "bad month", query: "origin=JFK&destination=LAX&month=June&token=t", wantStatus: http.StatusBadRequest},
		{name: "always failing", failureRate: 1, query: "origin=JFK&destination=LAX&month=2024-06&token=t", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMatrixMock(tt.failureRate, false, logger)
			req := httptest.NewRequest(http.MethodGet, "/v2/prices/month-matrix?"+tt.query, nil)
			w := httptest.NewRecorder()

			mock.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
