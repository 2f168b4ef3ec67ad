package schedules

import (
	"context"
	"sync"
)

// Adapter is one schedule source. Collect never fails: any upstream problem
// yields an empty candidate list so one broken source cannot sink a pass.
type Adapter interface {
	System() string
	Collect(ctx context.Context) []Candidate
}

// Collector merges candidates from all registered adapters.
type Collector struct {
	adapters []Adapter
}

// NewCollector creates a collector over the given adapters.
func NewCollector(adapters ...Adapter) *Collector {
	return &Collector{adapters: adapters}
}

// Collect runs all adapters concurrently and concatenates their results in
// adapter registration order, so output is deterministic per adapter.
func (c *Collector) Collect(ctx context.Context) []Candidate {
	results := make([][]Candidate, len(c.adapters))

	var wg sync.WaitGroup
	for i, adapter := range c.adapters {
		wg.Add(1)
		go func(i int, adapter Adapter) {
			defer wg.Done()
			results[i] = adapter.Collect(ctx)
		}(i, adapter)
	}
	wg.Wait()

	var merged []Candidate
	for _, candidates := range results {
		merged = append(merged, candidates...)
	}
	return merged
}
