package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/usagetop/usagetop/internal/model"
)

func TestClientFetchDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/usage" {
			t.Errorf("path = %q, want /v1/usage", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2024-01-15" {
			t.Errorf("date query = %q, want 2024-01-15", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want Bearer sk-test", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"model":"gpt-4o","input_tokens":100,"output_tokens":20}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test")
	records, err := client.FetchDay(context.Background(), "2024-01-15")
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0]["model"] != "gpt-4o" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestClientFetchDayNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-bad")
	_, err := client.FetchDay(context.Background(), "2024-01-15")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Body == "" {
		t.Error("Body is empty, want response body echoed")
	}
}

func TestClientFetchDayEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test")
	records, err := client.FetchDay(context.Background(), "2024-01-15")
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestDateRange(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad test date %q: %v", s, err)
		}
		return d
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       []string
	}{
		{"single day", day("2024-01-01"), day("2024-01-01"), []string{"2024-01-01"}},
		{"inclusive span", day("2024-01-30"), day("2024-02-02"), []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}},
		{"start after end", day("2024-02-01"), day("2024-01-01"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateRange(tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("DateRange = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DateRange[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// stubFetcher fakes per-day results and failures.
type stubFetcher struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]error
	record model.RawRecord
}

func (s *stubFetcher) FetchDay(ctx context.Context, date string) ([]model.RawRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, date)
	s.mu.Unlock()

	if err, ok := s.fail[date]; ok {
		return nil, err
	}
	return []model.RawRecord{s.record}, nil
}

func TestFetchDatesFirstFailureAborts(t *testing.T) {
	stub := &stubFetcher{
		fail:   map[string]error{"2024-01-01": &APIError{Status: 401, Body: "bad key"}},
		record: model.RawRecord{"model": "gpt-4o"},
	}
	orch := NewOrchestrator(stub, nil)

	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	batches, err := orch.FetchDates(context.Background(), dates)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("err = %v, want *APIError with status 401", err)
	}
	if batches != nil {
		t.Errorf("batches = %v, want nil on abort", batches)
	}
}

func TestFetchDatesLaterFailuresDegrade(t *testing.T) {
	stub := &stubFetcher{
		fail: map[string]error{
			"2024-01-02": &APIError{Status: 500, Body: "server error"},
			"2024-01-06": errors.New("connection reset"),
		},
		record: model.RawRecord{"model": "gpt-4o"},
	}
	orch := NewOrchestrator(stub, nil)

	dates := DateRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
	)
	batches, err := orch.FetchDates(context.Background(), dates)
	if err != nil {
		t.Fatalf("FetchDates: %v", err)
	}
	if len(batches) != 7 {
		t.Fatalf("got %d batches, want 7", len(batches))
	}

	for _, b := range batches {
		empty := len(b.Records) == 0
		shouldBeEmpty := b.Date == "2024-01-02" || b.Date == "2024-01-06"
		if empty != shouldBeEmpty {
			t.Errorf("day %s: %d records, degraded=%v", b.Date, len(b.Records), shouldBeEmpty)
		}
	}
}

func TestFetchDatesReturnsDateOrder(t *testing.T) {
	stub := &stubFetcher{record: model.RawRecord{"model": "gpt-4o"}}
	orch := NewOrchestrator(stub, nil)

	dates := DateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	)
	batches, err := orch.FetchDates(context.Background(), dates)
	if err != nil {
		t.Fatalf("FetchDates: %v", err)
	}
	for i, b := range batches {
		if b.Date != dates[i] {
			t.Errorf("batches[%d].Date = %q, want %q", i, b.Date, dates[i])
		}
	}
}

// barrierFetcher blocks each call until a full batch has arrived, so the
// test deadlocks (and times out) unless batch members run concurrently.
type barrierFetcher struct {
	mu      sync.Mutex
	arrived int
	cond    *sync.Cond
	batch   int
}

func newBarrierFetcher(batch int) *barrierFetcher {
	f := &barrierFetcher{batch: batch}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *barrierFetcher) FetchDay(ctx context.Context, date string) ([]model.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.arrived++
	if f.arrived%f.batch == 0 {
		f.cond.Broadcast()
	} else {
		for f.arrived%f.batch != 0 {
			f.cond.Wait()
		}
	}
	return nil, nil
}

func TestFetchDatesBatchConcurrency(t *testing.T) {
	orch := NewOrchestrator(newBarrierFetcher(BatchSize), nil)

	dates := DateRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	)

	done := make(chan error, 1)
	go func() {
		_, err := orch.FetchDates(context.Background(), dates)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("FetchDates: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("FetchDates deadlocked: batch members do not run concurrently")
	}
}
