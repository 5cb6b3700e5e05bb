package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inveskit/trade-mentor/internal/httpapi"
	"github.com/inveskit/trade-mentor/internal/pipeline"
	"github.com/inveskit/trade-mentor/internal/transcript"
	"github.com/inveskit/trade-mentor/internal/types"
)

// makeAnalyzeHandler creates the analyze_trades tool handler. A degraded
// result (unparseable model output) is still a successful tool call; only
// pipeline failures surface as tool errors.
func makeAnalyzeHandler(service httpapi.Service) func(
	context.Context, *mcp.CallToolRequest, AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (
		*mcp.CallToolResult, AnalyzeOutput, error,
	) {
		result, err := service.Analyze(ctx, &types.AnalysisRequest{
			Trades:      input.Trades,
			StockPrices: input.StockPrices,
			Strategy:    input.Strategy,
			ExternalURL: input.ExternalURL,
		})
		if err != nil {
			if errors.Is(err, pipeline.ErrContentUnavailable) {
				return nil, AnalyzeOutput{}, fmt.Errorf("%w. %s", err, pipeline.UnavailableGuidance)
			}
			return nil, AnalyzeOutput{}, fmt.Errorf("analysis failed: %w", err)
		}

		return nil, AnalyzeOutput{
			Analysis:   result.Analysis,
			TotalScore: result.TotalScore,
			Error:      result.Error,
			RawText:    result.RawText,
		}, nil
	}
}

// makeExtractVideoIDHandler creates the extract_video_id tool handler.
func makeExtractVideoIDHandler() func(
	context.Context, *mcp.CallToolRequest, ExtractVideoIDInput,
) (*mcp.CallToolResult, ExtractVideoIDOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExtractVideoIDInput) (
		*mcp.CallToolResult, ExtractVideoIDOutput, error,
	) {
		videoID, err := transcript.ExtractVideoID(input.URL)
		if err != nil {
			return nil, ExtractVideoIDOutput{}, err
		}
		return nil, ExtractVideoIDOutput{VideoID: videoID}, nil
	}
}

// makeTestVideoHandler creates the test_video tool handler. An unavailable
// transcript is reported in the output rather than as a tool error, so
// clients can probe candidate videos without failures.
func makeTestVideoHandler(service httpapi.Service) func(
	context.Context, *mcp.CallToolRequest, TestVideoInput,
) (*mcp.CallToolResult, TestVideoOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TestVideoInput) (
		*mcp.CallToolResult, TestVideoOutput, error,
	) {
		res, err := service.TestVideo(ctx, input.URL)
		if err != nil {
			if errors.Is(err, pipeline.ErrContentUnavailable) {
				return nil, TestVideoOutput{
					Available: false,
					Message:   pipeline.UnavailableGuidance,
				}, nil
			}
			return nil, TestVideoOutput{}, err
		}

		return nil, TestVideoOutput{
			VideoID:         res.VideoID,
			Available:       true,
			TranscriptChars: res.TranscriptChars,
			Preview:         res.Preview,
		}, nil
	}
}
