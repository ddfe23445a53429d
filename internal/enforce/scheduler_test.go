// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package enforce

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/traindaily/internal/bus"
	"github.com/ManuGH/traindaily/internal/clock"
	"github.com/ManuGH/traindaily/internal/schedule"
	"github.com/ManuGH/traindaily/internal/sessions"
	"github.com/ManuGH/traindaily/internal/store"
	"github.com/ManuGH/traindaily/internal/surface"
)

// Monday 16 February 2026.
var monday = time.Date(2026, 2, 16, 8, 0, 0, 0, time.Local)

// flakyStore fails Has while broken is set.
type flakyStore struct {
	store.RecordStore
	broken atomic.Bool
}

func (f *flakyStore) Has(ctx context.Context, key string) (bool, error) {
	if f.broken.Load() {
		return false, errors.Join(store.ErrUnavailable, errors.New("locked"))
	}
	return f.RecordStore.Has(ctx, key)
}

func newTestScheduler(t *testing.T, st store.RecordStore, start time.Time) (*Scheduler, *clock.Mock, *surface.Recorder) {
	t.Helper()
	clk := clock.NewMock(start)
	rec := &surface.Recorder{}
	s, err := NewScheduler(Deps{Store: st, Surface: rec, Clock: clk}, schedule.DefaultTrainingDays)
	require.NoError(t, err)
	return s, clk, rec
}

func TestShouldBlockOnTrainingDayWithoutRecord(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s, _, _ := newTestScheduler(t, st, monday)

	block, err := s.ShouldBlock(ctx, monday)
	require.NoError(t, err)
	assert.True(t, block)

	require.NoError(t, st.Save(ctx, "2026-02-16", store.Document(`{}`)))
	block, err = s.ShouldBlock(ctx, monday)
	require.NoError(t, err)
	assert.False(t, block)

	tuesday := monday.AddDate(0, 0, 1)
	block, err = s.ShouldBlock(ctx, tuesday)
	require.NoError(t, err)
	assert.False(t, block, "tuesday is not a training day")
}

func TestBlockThenUnblockAfterSave(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s, _, rec := newTestScheduler(t, st, monday)

	s.Tick(ctx)
	assert.Equal(t, Blocking, s.State())
	assert.Equal(t, 1, rec.Count("show", surface.Blocker))

	s.Tick(ctx)
	assert.Equal(t, 1, rec.Count("show", surface.Blocker), "no repeated show while blocking")

	require.NoError(t, st.Save(ctx, "2026-02-16", store.Document(`{"pushup":[10]}`)))
	s.Tick(ctx)
	assert.Equal(t, Open, s.State())
	assert.Equal(t, 1, rec.Count("hide", surface.Blocker))
}

func TestBlockerClearsAtMidnightOfNonTrainingDay(t *testing.T) {
	ctx := context.Background()
	s, clk, rec := newTestScheduler(t, store.NewMemoryStore(), monday)

	s.Tick(ctx)
	require.Equal(t, Blocking, s.State())

	clk.Set(time.Date(2026, 2, 17, 0, 0, 5, 0, time.Local))
	s.Tick(ctx)
	assert.Equal(t, Open, s.State())
	assert.Equal(t, 1, rec.Count("hide", surface.Blocker))
}

func TestStoreErrorSkipsTick(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{RecordStore: store.NewMemoryStore()}
	s, _, rec := newTestScheduler(t, st, monday)

	s.Tick(ctx)
	require.Equal(t, Blocking, s.State())

	require.NoError(t, st.Save(ctx, "2026-02-16", store.Document(`{}`)))
	st.broken.Store(true)
	s.Tick(ctx)
	assert.Equal(t, Blocking, s.State(), "store errors must not transition")
	assert.Zero(t, rec.Count("hide", surface.Blocker))

	st.broken.Store(false)
	s.Tick(ctx)
	assert.Equal(t, Open, s.State())
}

func TestDisplayErrorRetriesNextTick(t *testing.T) {
	ctx := context.Background()
	s, _, rec := newTestScheduler(t, store.NewMemoryStore(), monday)

	rec.SetFail(true)
	s.Tick(ctx)
	assert.Equal(t, Open, s.State())

	rec.SetFail(false)
	s.Tick(ctx)
	assert.Equal(t, Blocking, s.State())
	assert.Equal(t, 2, rec.Count("show", surface.Blocker))
}

func TestSetTrainingDays(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t, store.NewMemoryStore(), monday)
	s.SetTrainingDays(schedule.NewWeekdays(time.Tuesday))
	s.Tick(ctx)
	assert.Equal(t, Open, s.State())
}

func TestRunClearsBlockOnRemoteWrite(t *testing.T) {
	st := store.NewMemoryStore()
	b := bus.NewMemoryBus()
	clk := clock.NewMock(monday)
	rec := &surface.Recorder{}
	s, err := NewScheduler(Deps{Store: st, Surface: rec, Clock: clk, Bus: b}, schedule.DefaultTrainingDays)
	require.NoError(t, err)
	s.TickInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.State() == Blocking }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return b.Subscribers(bus.TopicSessions) == 1 }, 2*time.Second, 5*time.Millisecond)

	svc := sessions.New(st, b, clk)
	require.NoError(t, svc.Save(context.Background(), "relay", "2026-02-16", store.Document(`{"pushup":[1]}`)))

	require.Eventually(t, func() bool { return s.State() == Open }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, b.Subscribers(bus.TopicSessions))
}

func TestNewSchedulerValidates(t *testing.T) {
	_, err := NewScheduler(Deps{Surface: &surface.Recorder{}}, schedule.DefaultTrainingDays)
	require.ErrorIs(t, err, ErrMissingStore)
	_, err = NewScheduler(Deps{Store: store.NewMemoryStore()}, schedule.DefaultTrainingDays)
	require.ErrorIs(t, err, ErrMissingSurface)
}
