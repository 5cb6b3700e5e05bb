package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inveskit/trade-mentor/internal/completion"
	"github.com/inveskit/trade-mentor/internal/pipeline"
	"github.com/inveskit/trade-mentor/internal/types"
)

type fakeService struct {
	result *types.AnalysisResult
	test   *pipeline.VideoTest
	err    error
}

func (f *fakeService) Analyze(_ context.Context, _ *types.AnalysisRequest) (*types.AnalysisResult, error) {
	return f.result, f.err
}

func (f *fakeService) TestVideo(_ context.Context, _ string) (*pipeline.VideoTest, error) {
	return f.test, f.err
}

const analyzeBody = `{
	"trades": [{"stockName":"Alpha","stockCode":"000001","tradeType":"buy","date":"2024-03-11","price":100,"quantity":10}],
	"stockPrices": [{"date":"2024-03-12","closePrice":98}],
	"strategy": "external",
	"externalUrl": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
}`

func postAnalyze(t *testing.T, svc Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewAnalyzeHandler(svc, slog.Default())
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))
	return rec
}

func TestAnalyzeHandler_OK(t *testing.T) {
	svc := &fakeService{result: &types.AnalysisResult{
		Analysis:   []types.InstrumentAdvice{{ReferenceID: 1, InstrumentName: "Alpha", ActionSummary: "buy", Advice: "ok"}},
		TotalScore: 80,
	}}

	rec := postAnalyze(t, svc, analyzeBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 80, got.TotalScore)
	require.Len(t, got.Analysis, 1)
}

func TestAnalyzeHandler_BadJSON(t *testing.T) {
	rec := postAnalyze(t, &fakeService{}, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandler_InvalidInput(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w: at least one trade is required", types.ErrInvalidInput)}
	rec := postAnalyze(t, svc, analyzeBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandler_ContentUnavailable(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w: no caption tracks", pipeline.ErrContentUnavailable)}
	rec := postAnalyze(t, svc, analyzeBody)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, pipeline.UnavailableGuidance, body.Guidance)
}

func TestAnalyzeHandler_GenerationFailure(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w: upstream 500", completion.ErrGeneration)}
	rec := postAnalyze(t, svc, analyzeBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyzeHandler_MethodNotAllowed(t *testing.T) {
	h := NewAnalyzeHandler(&fakeService{}, slog.Default())
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTestVideoHandler(t *testing.T) {
	svc := &fakeService{test: &pipeline.VideoTest{VideoID: "dQw4w9WgXcQ", TranscriptChars: 1234, Preview: "welcome back"}}

	h := NewTestVideoHandler(svc, slog.Default())
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/test-video",
		strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got pipeline.VideoTest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "dQw4w9WgXcQ", got.VideoID)
	assert.Equal(t, 1234, got.TranscriptChars)
}

func TestHealthHandler_NoChecker(t *testing.T) {
	h := NewHealthHandler("memory", nil)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "memory", got.Backend)
}

type failingChecker struct{}

func (failingChecker) Health(context.Context) error { return fmt.Errorf("connection refused") }

func TestHealthHandler_UnhealthyBackend(t *testing.T) {
	h := NewHealthHandler("qdrant", failingChecker{})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
