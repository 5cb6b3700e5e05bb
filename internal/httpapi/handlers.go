// Package httpapi exposes the analysis pipeline over plain HTTP endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/inveskit/trade-mentor/internal/completion"
	"github.com/inveskit/trade-mentor/internal/pipeline"
	"github.com/inveskit/trade-mentor/internal/types"
)

// Service is the pipeline surface the HTTP handlers depend on.
type Service interface {
	Analyze(ctx context.Context, req *types.AnalysisRequest) (*types.AnalysisResult, error)
	TestVideo(ctx context.Context, url string) (*pipeline.VideoTest, error)
}

// ErrorResponse is the JSON error body. Guidance is set when the caller can
// act on the failure (e.g. pick a different video).
type ErrorResponse struct {
	Error    string `json:"error"`
	Guidance string `json:"guidance,omitempty"`
}

// NewAnalyzeHandler creates the POST /api/analyze handler.
func NewAnalyzeHandler(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
			return
		}

		var req types.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
			return
		}

		result, err := svc.Analyze(r.Context(), &req)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// testVideoRequest is the POST /api/test-video body.
type testVideoRequest struct {
	URL string `json:"url"`
}

// NewTestVideoHandler creates the POST /api/test-video handler, which checks
// transcript availability without running an analysis.
func NewTestVideoHandler(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
			return
		}

		var req testVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
			return
		}

		res, err := svc.TestVideo(r.Context(), req.URL)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status    string `json:"status"`
	Backend   string `json:"backend"`
	Timestamp string `json:"timestamp"`
}

// HealthChecker is implemented by vector backends with a liveness probe.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewHealthHandler creates the GET /health handler. checker may be nil when
// the backend has no external dependency to probe.
func NewHealthHandler(backend string, checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Backend:   backend,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := checker.Health(ctx); err != nil {
				resp.Status = "unhealthy"
				writeJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}

		resp.Status = "healthy"
		writeJSON(w, http.StatusOK, resp)
	}
}

// writeError maps pipeline failures to the HTTP error taxonomy: client-input
// problems are 400, unretrievable videos 404 with guidance, generation
// failures 502, everything else 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, pipeline.ErrContentUnavailable):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:    err.Error(),
			Guidance: pipeline.UnavailableGuidance,
		})
	case errors.Is(err, completion.ErrGeneration):
		logger.Error("generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("analysis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
