// Package mock synthesizes a deterministic 30-day usage report for
// demos and tests, bypassing the network entirely. The synthetic
// records flow through the same normalizer, estimator, and aggregator
// as live data, so the report shape is identical.
package mock

import (
	"math"
	"strings"
	"time"

	"github.com/usagetop/usagetop/internal/aggregator"
	"github.com/usagetop/usagetop/internal/model"
	"github.com/usagetop/usagetop/internal/pricing"
)

const (
	seed       = 42
	days       = 30
	modelCount = 6
)

// lcg is a Park-Miller linear congruential generator. Seeded with a
// fixed constant so mock output is reproducible across runs; the system
// random source would break golden fixtures.
type lcg struct {
	state int64
}

func (l *lcg) next() float64 {
	l.state = (l.state * 16807) % 2147483647
	return float64(l.state-1) / 2147483646
}

// Generate builds the synthetic report for the 30 days ending at now.
// Request volume follows a mildly increasing trend over the window.
//
// Mock mode has two deliberate quirks: CostIsEstimated is false and
// PeakDay stays "N/A" even though a peak exists. See DESIGN.md.
func Generate(now time.Time) *model.UsageReport {
	rand := &lcg{state: seed}
	models := pricing.KnownModels(modelCount)

	batches := make([]model.DayBatch, 0, days)
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days-i)+1).Format("2006-01-02")
		batch := model.DayBatch{Date: date}

		for _, name := range models {
			load := (0.5 + rand.next()) * (float64(i)/days*0.5 + 0.5)
			scale := 200.0
			if strings.Contains(name, "gpt-4") {
				scale = 50.0
			}
			requests := int64(math.Floor(load * scale))
			if requests == 0 {
				continue
			}

			prompt := requests * int64(math.Floor(500*(0.8+0.4*rand.next())))
			completion := requests * int64(math.Floor(200*(0.8+0.4*rand.next())))

			batch.Records = append(batch.Records, model.RawRecord{
				"model":         name,
				"input_tokens":  prompt,
				"output_tokens": completion,
				"num_requests":  requests,
				"source":        "mock-generator",
			})
		}

		batches = append(batches, batch)
	}

	report := aggregator.Aggregate(batches)
	report.CostIsEstimated = false
	report.PeakDay = model.PeakDayNone
	return report
}
