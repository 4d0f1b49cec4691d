// Package parser normalizes heterogeneous raw usage entries into the
// fixed shape the aggregator consumes. The usage API has shipped several
// field-name generations (input_tokens vs n_context_tokens_total vs
// prompt_tokens), so each logical field is resolved through an ordered
// candidate list.
package parser

import (
	"encoding/json"
	"strings"

	"github.com/usagetop/usagetop/internal/model"
)

// Candidate field names per logical attribute, tried in order. The
// first candidate carrying a usable (non-zero, non-empty) value wins,
// so a present-but-zero modern field still falls through to a legacy
// field that has real data.
var (
	promptTokenFields     = []string{"input_tokens", "n_context_tokens_total", "prompt_tokens"}
	completionTokenFields = []string{"output_tokens", "n_generated_tokens_total", "completion_tokens"}
	requestCountFields    = []string{"num_requests", "n_requests"}
	modelFields           = []string{"model", "snapshot_id"}
)

// UnknownModel is the model name assigned when a record carries none.
const UnknownModel = "unknown"

// Normalize reduces a raw usage entry to normalized counts. It is total:
// any input, including an empty map, produces a valid result. Requests
// defaults to 1 because the entry's existence implies at least one call.
func Normalize(raw model.RawRecord) model.NormalizedUsage {
	return model.NormalizedUsage{
		PromptTokens:     pickInt(raw, promptTokenFields, 0),
		CompletionTokens: pickInt(raw, completionTokenFields, 0),
		Requests:         pickInt(raw, requestCountFields, 1),
		Model:            pickString(raw, modelFields, UnknownModel),
	}
}

// pickInt returns the first non-zero integer value among candidates.
func pickInt(raw model.RawRecord, candidates []string, fallback int64) int64 {
	for _, field := range candidates {
		if n, ok := asInt(raw[field]); ok && n != 0 {
			return n
		}
	}
	return fallback
}

// pickString returns the first non-empty string value among candidates.
func pickString(raw model.RawRecord, candidates []string, fallback string) string {
	for _, field := range candidates {
		if s, ok := raw[field].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return fallback
}

// asInt coerces the numeric types a decoded JSON payload (or synthetic
// record) can carry. encoding/json yields float64 for all numbers.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
