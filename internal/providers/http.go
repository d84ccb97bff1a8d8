package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alex-user-go/cheapfare/internal/fares"
)

const (
	matrixPath = "/v2/prices/month-matrix"
	currency   = "usd"

	// maxBodySize caps how much of an upstream response is read.
	maxBodySize = 4 << 20
)

// MatrixClient queries the Travelpayouts month-matrix API.
type MatrixClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewMatrixClient creates a new MatrixClient.
func NewMatrixClient(baseURL, token string, timeout time.Duration) *MatrixClient {
	return &MatrixClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchMatrix returns the daily fares for a route and YYYY-MM month.
func (c *MatrixClient) FetchMatrix(ctx context.Context, origin, destination, month string) ([]fares.FareEntry, error) {
	u, err := url.Parse(c.baseURL + matrixPath)
	if err != nil {
		return nil, &fares.UpstreamError{Err: fmt.Errorf("invalid base URL: %w", err)}
	}

	q := u.Query()
	q.Set("currency", currency)
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("month", month)
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &fares.UpstreamError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Strip the URL so the token never reaches logs or clients.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, &fares.UpstreamError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close() // Explicitly ignore close error
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &fares.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &fares.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return ParseMatrix(body, origin, destination)
}
