package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"talentmatch/cv-matcher/internal/models"
)

// ParseDimensionResult parses evaluator output into a DimensionResult.
//
// The accepted grammar is: an optional markdown code fence (``` or ```json),
// an optional leading "json" label, then a JSON object carrying "score" and
// "justification". Anything outside that grammar is a malformed output and
// the caller degrades it to a zero result.
func ParseDimensionResult(raw string) (models.DimensionResult, error) {
	cleaned := stripFences(raw)

	if !gjson.Valid(cleaned) {
		return models.DimensionResult{}, fmt.Errorf("%w: not valid JSON", ErrMalformedOutput)
	}

	scoreField := gjson.Get(cleaned, "score")
	if !scoreField.Exists() {
		return models.DimensionResult{}, fmt.Errorf("%w: missing score field", ErrMalformedOutput)
	}

	var score float64
	switch scoreField.Type {
	case gjson.Number:
		score = scoreField.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(scoreField.Str), 64)
		if err != nil {
			return models.DimensionResult{}, fmt.Errorf("%w: non-numeric score %q", ErrMalformedOutput, scoreField.Str)
		}
		score = parsed
	default:
		return models.DimensionResult{}, fmt.Errorf("%w: non-numeric score", ErrMalformedOutput)
	}

	justification := gjson.Get(cleaned, "justification").String()
	if justification == "" {
		// The original evaluation contract named this field short_justification.
		justification = gjson.Get(cleaned, "short_justification").String()
	}

	return models.DimensionResult{
		Score:         clampScore(score),
		Justification: justification,
	}, nil
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	if strings.HasPrefix(strings.ToLower(cleaned), "json") {
		cleaned = strings.TrimSpace(cleaned[4:])
	}

	return strings.Trim(cleaned, "`")
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
