package status

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	id    string
	delay time.Duration
}

func (s *stubAdapter) Describe(ctx context.Context) SystemStatus {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return SystemStatus{ID: s.id, Name: s.id, State: StateOnline, Detail: "ok"}
}

func (s *stubAdapter) Fallback() SystemStatus {
	return SystemStatus{ID: s.id, Name: s.id, State: StateOffline, Detail: "No response before deadline"}
}

func TestAggregatePreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry(zerolog.Nop(),
		&stubAdapter{id: "alpha", delay: 30 * time.Millisecond},
		&stubAdapter{id: "beta"},
		&stubAdapter{id: "gamma", delay: 10 * time.Millisecond},
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got := reg.Aggregate(ctx)
	require.Len(t, got, 3)
	assert.Equal(t, "alpha", got[0].ID)
	assert.Equal(t, "beta", got[1].ID)
	assert.Equal(t, "gamma", got[2].ID)
}

func TestAggregateDeadlineReportsFallbacks(t *testing.T) {
	reg := NewRegistry(zerolog.Nop(),
		&stubAdapter{id: "fast"},
		&stubAdapter{id: "stuck", delay: 5 * time.Second},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := reg.Aggregate(ctx)
	elapsed := time.Since(start)

	require.Len(t, got, 2)
	assert.Equal(t, StateOnline, got[0].State)
	assert.Equal(t, StateOffline, got[1].State, "unfinished adapter should report its fallback")
	assert.NotEmpty(t, got[1].Detail)
	assert.Less(t, elapsed, time.Second, "deadline must bound the whole aggregation")
}

func TestAggregateLatencyBoundedBySlowest(t *testing.T) {
	adapters := make([]Adapter, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		adapters = append(adapters, &stubAdapter{id: id, delay: 40 * time.Millisecond})
	}
	reg := NewRegistry(zerolog.Nop(), adapters...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	got := reg.Aggregate(ctx)
	elapsed := time.Since(start)

	require.Len(t, got, 5)
	assert.Less(t, elapsed, 150*time.Millisecond, "adapters must run concurrently")
}
