package parser

import (
	"encoding/json"
	"testing"

	"github.com/usagetop/usagetop/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawRecord
		want model.NormalizedUsage
	}{
		{
			name: "modern field names",
			raw: model.RawRecord{
				"input_tokens":  float64(1000),
				"output_tokens": float64(500),
				"num_requests":  float64(3),
				"model":         "gpt-4o",
			},
			want: model.NormalizedUsage{PromptTokens: 1000, CompletionTokens: 500, Requests: 3, Model: "gpt-4o"},
		},
		{
			name: "legacy field names",
			raw: model.RawRecord{
				"n_context_tokens_total":   float64(2000),
				"n_generated_tokens_total": float64(800),
				"n_requests":               float64(5),
				"snapshot_id":              "gpt-3.5-turbo-0125",
			},
			want: model.NormalizedUsage{PromptTokens: 2000, CompletionTokens: 800, Requests: 5, Model: "gpt-3.5-turbo-0125"},
		},
		{
			name: "oldest field names",
			raw: model.RawRecord{
				"prompt_tokens":     float64(100),
				"completion_tokens": float64(50),
			},
			want: model.NormalizedUsage{PromptTokens: 100, CompletionTokens: 50, Requests: 1, Model: "unknown"},
		},
		{
			name: "zero value falls through to next candidate",
			raw: model.RawRecord{
				"input_tokens":  float64(0),
				"prompt_tokens": float64(42),
				"model":         "gpt-4",
			},
			want: model.NormalizedUsage{PromptTokens: 42, CompletionTokens: 0, Requests: 1, Model: "gpt-4"},
		},
		{
			name: "empty record still normalizes",
			raw:  model.RawRecord{},
			want: model.NormalizedUsage{PromptTokens: 0, CompletionTokens: 0, Requests: 1, Model: "unknown"},
		},
		{
			name: "nil record still normalizes",
			raw:  nil,
			want: model.NormalizedUsage{PromptTokens: 0, CompletionTokens: 0, Requests: 1, Model: "unknown"},
		},
		{
			name: "blank model falls through",
			raw: model.RawRecord{
				"model":       "  ",
				"snapshot_id": "dall-e-3",
			},
			want: model.NormalizedUsage{PromptTokens: 0, CompletionTokens: 0, Requests: 1, Model: "dall-e-3"},
		},
		{
			name: "garbage values are ignored",
			raw: model.RawRecord{
				"input_tokens": "not-a-number",
				"num_requests": []any{1, 2},
				"model":        float64(7),
			},
			want: model.NormalizedUsage{PromptTokens: 0, CompletionTokens: 0, Requests: 1, Model: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Requests must be at least 1 for any record, present fields or not.
func TestNormalizeRequestsInvariant(t *testing.T) {
	records := []model.RawRecord{
		{},
		{"num_requests": float64(0)},
		{"n_requests": float64(0)},
		{"input_tokens": float64(10)},
	}
	for i, raw := range records {
		if got := Normalize(raw).Requests; got < 1 {
			t.Errorf("record %d: Requests = %d, want >= 1", i, got)
		}
	}
}

func TestNormalizeIntCoercion(t *testing.T) {
	raw := model.RawRecord{
		"input_tokens":  int64(123),
		"output_tokens": 456,
		"num_requests":  json.Number("7"),
	}
	got := Normalize(raw)
	want := model.NormalizedUsage{PromptTokens: 123, CompletionTokens: 456, Requests: 7, Model: "unknown"}
	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}
