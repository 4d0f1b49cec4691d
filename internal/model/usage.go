package model

// RawRecord is one usage entry exactly as the usage API returned it.
// Field names vary between API versions, so it stays an opaque map until
// the parser normalizes it.
type RawRecord map[string]any

// DayBatch holds the raw records fetched for a single calendar date.
type DayBatch struct {
	Date    string // YYYY-MM-DD
	Records []RawRecord
}

// NormalizedUsage is a RawRecord reduced to the four fields the
// aggregator cares about.
type NormalizedUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	Requests         int64
	Model            string
}

// DailyUsage is the per-day summary. Days with no activity are omitted
// from reports entirely, so consumers must not assume contiguous dates.
type DailyUsage struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	TotalTokens      int64   `json:"totalTokens"`
	Cost             float64 `json:"cost"`
}

// ModelUsage is the per-model summary across the whole date range.
type ModelUsage struct {
	Model       string  `json:"model"`
	TotalTokens int64   `json:"totalTokens"`
	Requests    int64   `json:"requests"`
	Cost        float64 `json:"cost"`
}

// UsageReport is the terminal aggregate handed to renderers. The JSON
// field names match what the dashboard frontend consumes.
type UsageReport struct {
	Daily           []DailyUsage `json:"daily"`
	ByModel         []ModelUsage `json:"byModel"`
	TotalTokens     int64        `json:"totalTokens"`
	TotalRequests   int64        `json:"totalRequests"`
	TotalCost       float64      `json:"totalCost"`
	PeakDay         string       `json:"peakDay"`
	AvgDailyCost    float64      `json:"avgDailyCost"`
	CostIsEstimated bool         `json:"costIsEstimated"`
	Raw             any          `json:"raw"` // raw API payload echo for debugging
}

// PeakDayNone is the PeakDay sentinel for reports with no active days.
const PeakDayNone = "N/A"
