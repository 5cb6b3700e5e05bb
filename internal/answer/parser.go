// Package answer recovers the structured analysis payload from free-form
// model output. Generators wrap JSON in code fences and prose often enough
// that structural recovery is the expected path, not the exceptional one.
package answer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inveskit/trade-mentor/internal/types"
)

// ParseError reports output that could not be coerced into an
// AnalysisResult. Raw preserves the original model output verbatim so the
// caller can return a degraded response instead of failing the request.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %s", e.Reason)
}

// Extract isolates and parses the structured payload in raw. It strips
// enclosing code fences, cuts from the first opening brace to the last
// closing brace to shed surrounding prose, then parses strictly.
func Extract(raw string) (*types.AnalysisResult, error) {
	s := stripFences(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, &ParseError{Raw: raw, Reason: "no JSON object found"}
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(s[start:end+1]), &result); err != nil {
		return nil, &ParseError{Raw: raw, Reason: err.Error()}
	}

	if result.TotalScore < 0 || result.TotalScore > 100 {
		return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("total_score %d out of range [0,100]", result.TotalScore)}
	}
	if len(result.Analysis) == 0 {
		return nil, &ParseError{Raw: raw, Reason: "no analysis entries"}
	}

	return &result, nil
}

// stripFences removes leading and trailing markdown code fence lines,
// leaving inner content untouched.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = ""
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// Degraded builds the fallback result carrying the unparseable raw output,
// so partial feedback still reaches the caller.
func Degraded(perr *ParseError) *types.AnalysisResult {
	return &types.AnalysisResult{
		Error:   "failed to parse model output",
		RawText: perr.Raw,
	}
}
