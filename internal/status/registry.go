package status

import (
	"context"

	"github.com/rs/zerolog"
)

// Adapter turns one subordinate system's raw signals into a SystemStatus.
type Adapter interface {
	// Describe probes the system and returns its current status. It never
	// returns an error: failures become state and detail.
	Describe(ctx context.Context) SystemStatus

	// Fallback is the status reported when the adapter misses the
	// aggregation deadline: offline for networked systems, missing for
	// filesystem-backed ones. Partial results beat no results.
	Fallback() SystemStatus
}

// Registry is a static ordered list of adapters. Order is a presentation
// concern only, but it is stable across calls so the UI can diff.
type Registry struct {
	adapters []Adapter
	logger   zerolog.Logger
}

// NewRegistry creates a registry over the given adapters, in order.
func NewRegistry(logger zerolog.Logger, adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters, logger: logger}
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.adapters)
}

type indexedStatus struct {
	index  int
	status SystemStatus
}

// Aggregate describes every registered system concurrently and returns the
// results in registration order. Each adapter runs in its own goroutine so
// total latency is bounded by the slowest single probe, not the sum. When
// ctx expires before an adapter answers, that adapter's Fallback is
// reported instead of blocking the response.
func (r *Registry) Aggregate(ctx context.Context) []SystemStatus {
	results := make([]SystemStatus, len(r.adapters))
	done := make([]bool, len(r.adapters))

	// Buffered so late goroutines never leak after a deadline.
	ch := make(chan indexedStatus, len(r.adapters))
	for i, a := range r.adapters {
		go func(i int, a Adapter) {
			ch <- indexedStatus{index: i, status: a.Describe(ctx)}
		}(i, a)
	}

	collected := 0
	for collected < len(r.adapters) {
		select {
		case res := <-ch:
			results[res.index] = res.status
			done[res.index] = true
			collected++
		case <-ctx.Done():
			for i, ok := range done {
				if !ok {
					results[i] = r.adapters[i].Fallback()
				}
			}
			r.logger.Warn().
				Int("missing", len(r.adapters)-collected).
				Msg("aggregation deadline exceeded, reporting fallbacks")
			return results
		}
	}
	return results
}
