package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/usagetop/usagetop/internal/model"
)

// BatchSize is how many per-date requests run concurrently. Batches are
// issued sequentially, so at most BatchSize requests are in flight.
const BatchSize = 5

// Orchestrator walks a date range through a DayFetcher in fixed-size
// concurrent batches and collects the per-day results in date order.
//
// The very first date is load-bearing: if it fails, the whole range
// fetch aborts with that error, so a bad key or malformed range fails
// fast instead of producing a month of silently empty days. Every other
// failure degrades to an empty day and is only logged.
type Orchestrator struct {
	fetcher DayFetcher
	log     *zap.Logger
}

// NewOrchestrator creates an orchestrator. A nil logger disables logging.
func NewOrchestrator(fetcher DayFetcher, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{fetcher: fetcher, log: log}
}

// DateRange expands [start, end] into inclusive YYYY-MM-DD strings.
// Returns nil when start is after end.
func DateRange(start, end time.Time) []string {
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}

// FetchRange fetches every date in [start, end] and returns one batch
// per date, in date order. Failed non-first days come back empty.
func (o *Orchestrator) FetchRange(ctx context.Context, start, end time.Time) ([]model.DayBatch, error) {
	return o.FetchDates(ctx, DateRange(start, end))
}

// FetchDates is FetchRange over an explicit, already-ordered date list.
func (o *Orchestrator) FetchDates(ctx context.Context, dates []string) ([]model.DayBatch, error) {
	batches := make([]model.DayBatch, len(dates))

	for i := 0; i < len(dates); i += BatchSize {
		endIdx := min(i+BatchSize, len(dates))

		g, gctx := errgroup.WithContext(ctx)
		for j := i; j < endIdx; j++ {
			j := j
			g.Go(func() error {
				date := dates[j]
				records, err := o.fetcher.FetchDay(gctx, date)
				if err != nil {
					if j == 0 {
						return err
					}
					o.log.Warn("usage fetch failed, treating day as empty",
						zap.String("date", date),
						zap.Error(err))
					records = nil
				}
				batches[j] = model.DayBatch{Date: date, Records: records}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return batches, nil
}
