package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alex-user-go/cheapfare/internal/fares"
)

// matrixResponse is the envelope of the month-matrix API.
// Data is either a list of entries or, in the oldest revision,
// an object keyed by "ORIGIN-DESTINATION".
type matrixResponse struct {
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data"`
}

type matrixEntry struct {
	DepartDate json.RawMessage `json:"depart_date"`
	Value      json.RawMessage `json:"value"`
}

// routeKey returns the key used by the keyed payload revision.
func routeKey(origin, destination string) string {
	return origin + "-" + destination
}

// ParseMatrix extracts the fare list for a route from a month-matrix payload.
func ParseMatrix(body []byte, origin, destination string) ([]fares.FareEntry, error) {
	var resp matrixResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", fares.ErrData, err)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, &fares.UpstreamError{StatusCode: http.StatusOK, Body: string(body)}
	}

	list := bytes.TrimSpace(resp.Data)
	if len(list) > 0 && list[0] == '{' {
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(list, &keyed); err != nil {
			return nil, fmt.Errorf("%w: %v", fares.ErrData, err)
		}
		list = bytes.TrimSpace(keyed[routeKey(origin, destination)])
	}

	if len(list) == 0 || list[0] != '[' {
		return nil, fares.ErrNotFound
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(list, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", fares.ErrData, err)
	}
	if len(raw) == 0 {
		return nil, fares.ErrNotFound
	}

	entries := make([]fares.FareEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, parseEntry(r))
	}
	return entries, nil
}

// parseEntry is lenient: fields of the wrong type are left empty.
func parseEntry(r json.RawMessage) fares.FareEntry {
	var (
		e     matrixEntry
		entry fares.FareEntry
	)
	if err := json.Unmarshal(r, &e); err != nil {
		return entry
	}

	var date string
	if err := json.Unmarshal(e.DepartDate, &date); err == nil {
		entry.DepartDate = date
	}

	var value float64
	if len(e.Value) > 0 && !bytes.Equal(e.Value, []byte("null")) {
		if err := json.Unmarshal(e.Value, &value); err == nil {
			entry.Value = &value
		}
	}
	return entry
}
