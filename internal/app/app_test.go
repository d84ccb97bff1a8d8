package app_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alex-user-go/cheapfare/internal/app"
	"github.com/alex-user-go/cheapfare/internal/config"
)

func newServer(t *testing.T, upstream *httptest.Server, airportsCSV string) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		TravelpayoutsURL:   upstream.URL,
		TravelpayoutsToken: "token",
		UpstreamTimeout:    time.Second,
		CORSOrigins:        []string{"*"},
		AirportsCSV:        airportsCSV,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h, metrics, err := app.NewHandler(cfg, logger)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	srv := httptest.NewServer(app.Routes(h, metrics, cfg, logger))
	t.Cleanup(srv.Close)
	return srv
}

func matrixUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[` +
			`{"depart_date":"2024-06-03","value":120},` +
			`{"depart_date":"2024-06-10","value":95},` +
			`{"depart_date":"2024-06-17","value":150}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes_Predict(t *testing.T) {
	srv := newServer(t, matrixUpstream(t), "")

	resp, err := http.Post(srv.URL+"/predict", "application/json", strings.NewReader(`{"from":"jfk","to":"lax","date":"2024-06-15"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["date"] != "2024-06-10" || body["savings"] != 95.0 {
		t.Errorf("body = %v, want cheapest 2024-06-10 / 95", body)
	}
}

func TestRoutes_MethodAndPaths(t *testing.T) {
	srv := newServer(t, matrixUpstream(t), "")

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK, wantBody: "OK"},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantBody: "cheapfare_http_requests_total"},
		{name: "predict with GET", method: http.MethodGet, path: "/predict", wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/search", wantStatus: http.StatusNotFound},
	}

	// Prime the request counter so it shows up in /metrics.
	if resp, err := http.Get(srv.URL + "/healthz"); err == nil {
		resp.Body.Close()
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" {
				b, _ := io.ReadAll(resp.Body)
				if !strings.Contains(string(b), tt.wantBody) {
					t.Errorf("body does not contain %q", tt.wantBody)
				}
			}
		})
	}
}

func TestRoutes_CORSPreflight(t *testing.T) {
	srv := newServer(t, matrixUpstream(t), "")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/predict", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestNewHandler_AirportDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airports.csv")
	csv := "iata_code,name,city,country\nJFK,John F Kennedy,New York,US\nLAX,Los Angeles,Los Angeles,US\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv := newServer(t, matrixUpstream(t), path)

	tests := []struct {
		body       string
		wantStatus int
	}{
		{body: `{"from":"JFK","to":"LAX","date":"2024-06-15"}`, wantStatus: http.StatusOK},
		{body: `{"from":"JFK","to":"XXX","date":"2024-06-15"}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Post(srv.URL+"/predict", "application/json", strings.NewReader(tt.body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.body, resp.StatusCode, tt.wantStatus)
		}
	}
}

func TestNewHandler_MissingAirportFile(t *testing.T) {
	cfg := &config.Config{
		TravelpayoutsURL:   "http://127.0.0.1:0",
		TravelpayoutsToken: "token",
		UpstreamTimeout:    time.Second,
		AirportsCSV:        filepath.Join(t.TempDir(), "missing.csv"),
	}
	if _, _, err := app.NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("expected error for missing airports file, got nil")
	}
}
