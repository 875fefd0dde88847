package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricavi/internal/amqp"
	"ricavi/internal/core"
	"ricavi/internal/services"
	"ricavi/internal/store/memory"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes map[core.Period][][]any
	calls  int
	err    error
}

func (r *recordingWriter) WriteMonth(_ context.Context, p core.Period, values [][]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	if r.writes == nil {
		r.writes = make(map[core.Period][][]any)
	}
	r.writes[p] = values
	return nil
}

func setup(t *testing.T) (*memory.Store, *services.RevenueService) {
	t.Helper()
	st := memory.New()
	return st, services.NewRevenueService(st, services.Options{Policy: core.DefaultPolicy()})
}

func TestHandleMonthUpdated(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	p := core.NewPeriod(2025, 4)
	_, err := svc.UpdateCell(ctx, p, 1, "", "50 200 30")
	require.NoError(t, err)

	w := &recordingWriter{}
	sw := NewSyncWorker(svc, w, st)
	require.NoError(t, sw.HandleMonthUpdated(ctx, amqp.NewMonthUpdatedMessage(p)))

	grid := w.writes[p]
	require.Len(t, grid, 1+30+1+3)
	assert.Equal(t, []any{1, "50 200 30", int64(280000)}, grid[1])
}

func TestHandleMonthUpdatedSkipsStale(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	p := core.NewPeriod(2025, 4)

	w := &recordingWriter{}
	sw := NewSyncWorker(svc, w, st)

	old := amqp.NewMonthUpdatedMessage(p)
	old.Timestamp = time.Now().Add(-time.Hour)

	require.NoError(t, sw.HandleMonthUpdated(ctx, amqp.NewMonthUpdatedMessage(p)))
	require.NoError(t, sw.HandleMonthUpdated(ctx, old))
	assert.Equal(t, 1, w.calls)
}

func TestHandleMonthUpdatedUsesPublisherClock(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	p := core.NewPeriod(2025, 4)

	w := &recordingWriter{}
	sw := NewSyncWorker(svc, w, st)

	// a startup sync by a worker whose clock runs ahead must not hide
	// messages stamped by a publisher whose clock lags
	_, err := svc.UpdateCell(ctx, p, 1, "", "50")
	require.NoError(t, err)
	require.NoError(t, sw.StartupSync(ctx))
	require.Equal(t, 1, w.calls)
	w.calls = 0

	base := time.Now().Add(-2 * time.Hour)
	msg := func(ts time.Time) *amqp.MonthUpdatedMessage {
		m := amqp.NewMonthUpdatedMessage(p)
		m.Timestamp = ts
		return m
	}

	require.NoError(t, sw.HandleMonthUpdated(ctx, msg(base)))
	assert.Equal(t, 1, w.calls)

	require.NoError(t, sw.HandleMonthUpdated(ctx, msg(base.Add(-time.Minute))))
	assert.Equal(t, 1, w.calls, "older message is skipped")

	require.NoError(t, sw.HandleMonthUpdated(ctx, msg(base.Add(time.Minute))))
	assert.Equal(t, 2, w.calls)
}

func TestHandleMonthUpdatedFailureDoesNotMarkHandled(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	p := core.NewPeriod(2025, 4)

	w := &recordingWriter{err: errors.New("quota exceeded")}
	sw := NewSyncWorker(svc, w, st)

	m := amqp.NewMonthUpdatedMessage(p)
	require.Error(t, sw.HandleMonthUpdated(ctx, m))

	w.err = nil
	older := amqp.NewMonthUpdatedMessage(p)
	older.Timestamp = m.Timestamp.Add(-time.Minute)
	require.NoError(t, sw.HandleMonthUpdated(ctx, older))
	assert.Equal(t, 2, w.calls)
}

func TestHandleMonthUpdatedWriteError(t *testing.T) {
	st, svc := setup(t)
	w := &recordingWriter{err: errors.New("quota exceeded")}
	sw := NewSyncWorker(svc, w, st)

	err := sw.HandleMonthUpdated(context.Background(), amqp.NewMonthUpdatedMessage(core.NewPeriod(2025, 4)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestStartupSync(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	for _, p := range []core.Period{core.NewPeriod(2025, 1), core.NewPeriod(2025, 2)} {
		_, err := svc.UpdateCell(ctx, p, 1, "", "100")
		require.NoError(t, err)
	}

	w := &recordingWriter{}
	require.NoError(t, NewSyncWorker(svc, w, st).StartupSync(ctx))
	assert.Len(t, w.writes, 2)

	require.NoError(t, NewSyncWorker(svc, w, nil).StartupSync(ctx))
	assert.Equal(t, 2, w.calls)
}
