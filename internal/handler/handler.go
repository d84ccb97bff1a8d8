package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/alex-user-go/cheapfare/internal/fares"
	"github.com/alex-user-go/cheapfare/internal/middleware"
	"github.com/alex-user-go/cheapfare/internal/obs"
)

// maxRequestBody caps the size of a /predict body.
const maxRequestBody = 1 << 16

// Selector is the fare selection the handler depends on.
type Selector interface {
	SelectCheapest(ctx context.Context, req fares.SearchRequest) (*fares.FareResult, error)
}

// Handler handles HTTP requests.
type Handler struct {
	selector Selector
	metrics  *obs.Metrics
	logger   *slog.Logger
}

// New creates a new Handler.
func New(selector Selector, metrics *obs.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		selector: selector,
		metrics:  metrics,
		logger:   logger,
	}
}

// PredictRequest is the /predict request body.
type PredictRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PredictHandler handles POST /predict requests.
func (h *Handler) PredictHandler(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r.Context())

	var body PredictRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		h.logger.Debug("invalid request body", "request_id", requestID, "error", err)
		h.metrics.IncPrediction("validation")
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	req := fares.SearchRequest{
		Origin:      body.From,
		Destination: body.To,
		Date:        body.Date,
	}

	result, err := h.selector.SelectCheapest(r.Context(), req)
	if err != nil {
		status, resp, outcome := errorResponse(err)
		h.metrics.IncPrediction(outcome)
		if status >= http.StatusInternalServerError {
			h.logger.Error("prediction failed",
				"request_id", requestID,
				"from", req.Origin,
				"to", req.Destination,
				"date", req.Date,
				"error", err,
			)
		} else {
			h.logger.Info("prediction rejected",
				"request_id", requestID,
				"outcome", outcome,
				"error", err,
			)
		}
		writeError(w, status, resp)
		return
	}

	h.metrics.IncPrediction("ok")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		// Can't change status after WriteHeader, just log
		h.logger.Error("failed to encode response", "request_id", requestID, "error", err)
	}
}

// errorResponse maps a selection error to its HTTP status, body and metric outcome.
func errorResponse(err error) (int, ErrorResponse, string) {
	var (
		validationErr *fares.ValidationError
		upstreamErr   *fares.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid input", Details: validationErr.Error()}, "validation"
	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError, ErrorResponse{Error: "upstream request failed", Details: upstreamErr.Details()}, "upstream"
	case errors.Is(err, fares.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "no flights found"}, "not_found"
	case errors.Is(err, fares.ErrData):
		return http.StatusInternalServerError, ErrorResponse{Error: "failed to parse upstream result", Details: err.Error()}, "data"
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}, "internal"
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
