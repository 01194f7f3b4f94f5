package service

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

func TestSweepCancelsOverduePending(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    overdue := f.pendingAt(seat.ID, 7, baseTime.Add(-16*time.Minute), f.clk.EndOfDay(baseTime))
    fresh := f.pendingAt(seat.ID, 8, baseTime.Add(time.Hour), f.clk.EndOfDay(baseTime))
    running := f.activeAt(seat.ID, 9, baseTime.Add(-time.Hour), f.clk.EndOfDay(baseTime))

    require.NoError(t, f.sweeper.RunIfDue(context.Background()))

    got, _ := f.db.reservation(overdue.ID)
    assert.Equal(t, model.StatusCancelled, got.Status)

    got, _ = f.db.reservation(fresh.ID)
    assert.Equal(t, model.StatusPending, got.Status, "future pending must survive the sweep")

    got, _ = f.db.reservation(running.ID)
    assert.Equal(t, model.StatusActive, got.Status, "active reservations are never swept")

    assert.Equal(t, []string{"checkin_expired"}, f.pub.published())
}

// A pending reservation still inside its check-in window is not
// overdue even though its start time has passed.
func TestSweepKeepsPendingInsideWindow(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.pendingAt(seat.ID, 7, baseTime.Add(-10*time.Minute), f.clk.EndOfDay(baseTime))

    require.NoError(t, f.sweeper.RunIfDue(context.Background()))

    got, _ := f.db.reservation(r.ID)
    assert.Equal(t, model.StatusPending, got.Status)
}

func TestSweepIsRateLimited(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    ctx := context.Background()

    require.NoError(t, f.sweeper.RunIfDue(ctx))

    // Becomes overdue right after the first sweep; within the interval
    // the sweeper must not run again.
    r := f.pendingAt(seat.ID, 7, baseTime.Add(-20*time.Minute), f.clk.EndOfDay(baseTime))
    f.advance(10 * time.Second)
    require.NoError(t, f.sweeper.RunIfDue(ctx))

    got, _ := f.db.reservation(r.ID)
    assert.Equal(t, model.StatusPending, got.Status)

    // Past the interval the next call sweeps it up.
    f.advance(time.Minute)
    require.NoError(t, f.sweeper.RunIfDue(ctx))
    got, _ = f.db.reservation(r.ID)
    assert.Equal(t, model.StatusCancelled, got.Status)
}

// Reads through the resolver trigger the sweep themselves: a stale
// pending reservation can never hold a seat occupied in the listing.
func TestStatusReadTriggersSweep(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    f.pendingAt(seat.ID, 7, baseTime.Add(-30*time.Minute), f.clk.EndOfDay(baseTime))

    statuses, err := f.resolver.ListStatuses(context.Background(), nil)
    require.NoError(t, err)
    require.Len(t, statuses, 1)
    assert.Equal(t, DisplayFree, statuses[0].Status)
}
