package diag

import (
	"context"
	"sync"
	"time"
)

// MemorySink collects diagnostics in memory. Used in tests and by Summarize.
type MemorySink struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Report records the diagnostic.
func (s *MemorySink) Report(_ context.Context, d Diagnostic) {
	if d.RecordedAt.IsZero() {
		d.RecordedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, d)
}

// Entries returns a copy of everything recorded so far.
func (s *MemorySink) Entries() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.entries))
	copy(out, s.entries)
	return out
}

// Summary aggregates recorded diagnostics for retrospective review.
type Summary struct {
	Total      int
	ByKind     map[Kind]int
	ByCurrency map[string]int
	Orders     map[int64]int
	DateFrom   time.Time
	DateTo     time.Time
}

// Summarize builds a Summary from a slice of diagnostics.
func Summarize(entries []Diagnostic) Summary {
	summary := Summary{
		ByKind:     make(map[Kind]int),
		ByCurrency: make(map[string]int),
		Orders:     make(map[int64]int),
	}

	for _, d := range entries {
		summary.Total++
		summary.ByKind[d.Kind]++
		if d.Currency != "" {
			summary.ByCurrency[d.Currency]++
		}
		summary.Orders[d.OrderID]++

		if summary.DateFrom.IsZero() || d.RecordedAt.Before(summary.DateFrom) {
			summary.DateFrom = d.RecordedAt
		}
		if d.RecordedAt.After(summary.DateTo) {
			summary.DateTo = d.RecordedAt
		}
	}

	return summary
}
