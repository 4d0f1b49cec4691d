// Package aggregator folds per-day batches of raw usage entries into a
// UsageReport: daily summaries, per-model summaries, and range rollups.
package aggregator

import (
	"math"
	"sort"

	"github.com/usagetop/usagetop/internal/model"
	"github.com/usagetop/usagetop/internal/parser"
	"github.com/usagetop/usagetop/internal/pricing"
)

// fetchedDateKey tags each echoed raw record with the date it was
// fetched under, since raw entries do not always carry one themselves.
const fetchedDateKey = "_fetched_date"

// Aggregate builds a report from per-day raw batches. It is total: an
// empty input yields a well-defined empty report, and the result is
// independent of batch order and of record order within a day.
//
// Rounding is display-grade and intentional: per-entry costs round to 6
// decimals, and range totals are computed by summing the rounded daily
// values, then rounding to 2 decimals. Do not re-derive exact totals
// from a report.
func Aggregate(batches []model.DayBatch) *model.UsageReport {
	dailyMap := make(map[string]*model.DailyUsage)
	modelMap := make(map[string]*model.ModelUsage)
	var modelOrder []string
	var rawEcho []model.RawRecord

	for _, batch := range batches {
		day, ok := dailyMap[batch.Date]
		if !ok {
			day = &model.DailyUsage{Date: batch.Date}
		}

		for _, raw := range batch.Records {
			rawEcho = append(rawEcho, tagRecord(raw, batch.Date))

			rec := parser.Normalize(raw)
			cost := pricing.EstimateCost(rec.Model, rec.PromptTokens, rec.CompletionTokens)

			day.Requests += rec.Requests
			day.PromptTokens += rec.PromptTokens
			day.CompletionTokens += rec.CompletionTokens
			day.Cost += cost

			m, ok := modelMap[rec.Model]
			if !ok {
				m = &model.ModelUsage{Model: rec.Model}
				modelMap[rec.Model] = m
				modelOrder = append(modelOrder, rec.Model)
			}
			m.TotalTokens += rec.PromptTokens + rec.CompletionTokens
			m.Requests += rec.Requests
			m.Cost += cost
		}

		// Days with no activity are dropped, keeping the daily sequence sparse.
		if day.Requests > 0 || day.Cost > 0 || day.PromptTokens > 0 {
			dailyMap[batch.Date] = day
		}
	}

	daily := make([]model.DailyUsage, 0, len(dailyMap))
	for _, day := range dailyMap {
		day.TotalTokens = day.PromptTokens + day.CompletionTokens
		day.Cost = round6(day.Cost)
		daily = append(daily, *day)
	}
	// ISO date strings sort chronologically.
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date < daily[j].Date
	})

	byModel := make([]model.ModelUsage, 0, len(modelOrder))
	for _, name := range modelOrder {
		m := *modelMap[name]
		m.Cost = round6(m.Cost)
		byModel = append(byModel, m)
	}
	// Stable sort keeps first-seen order among equal costs.
	sort.SliceStable(byModel, func(i, j int) bool {
		return byModel[i].Cost > byModel[j].Cost
	})

	report := &model.UsageReport{
		Daily:           daily,
		ByModel:         byModel,
		PeakDay:         model.PeakDayNone,
		CostIsEstimated: true,
		Raw: map[string]any{
			"object": "list",
			"data":   rawEcho,
		},
	}

	var costSum float64
	for _, day := range daily {
		costSum += day.Cost
		report.TotalTokens += day.TotalTokens
		report.TotalRequests += day.Requests
	}
	report.TotalCost = round2(costSum)

	if len(daily) > 0 {
		report.AvgDailyCost = round2(costSum / float64(len(daily)))

		// First max wins on ties.
		peak := daily[0]
		for _, day := range daily[1:] {
			if day.Cost > peak.Cost {
				peak = day
			}
		}
		report.PeakDay = peak.Date
	}

	return report
}

// tagRecord copies a raw record with the fetched-date marker added.
func tagRecord(raw model.RawRecord, date string) model.RawRecord {
	tagged := make(model.RawRecord, len(raw)+1)
	for k, v := range raw {
		tagged[k] = v
	}
	tagged[fetchedDateKey] = date
	return tagged
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round2(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}
