package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	n     int64
	err   error
}

func (s *countingSweeper) Sweep(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.n, s.err
}

func (s *countingSweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type sweepTotal struct {
	mu    sync.Mutex
	total int64
}

func (o *sweepTotal) ObserveSweep(n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total += n
}

func (o *sweepTotal) Total() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.total
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSweep(t *testing.T) {
	n, err := Sweep(context.Background(), &countingSweeper{n: 4}, discard())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	boom := errors.New("db down")
	_, err = Sweep(context.Background(), &countingSweeper{err: boom}, discard())
	assert.ErrorIs(t, err, boom)
}

func TestStartRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sw := &countingSweeper{n: 2}
	obs := &sweepTotal{}

	done := make(chan struct{})
	go func() {
		Start(ctx, sw, obs, Config{SweepInterval: 5 * time.Millisecond}, discard())
		close(done)
	}()

	assert.Eventually(t, func() bool { return sw.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.GreaterOrEqual(t, obs.Total(), int64(4))
}

func TestStartWithSweepDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sw := &countingSweeper{}
	Start(ctx, sw, nil, Config{}, discard())
	assert.Zero(t, sw.Calls())
}
