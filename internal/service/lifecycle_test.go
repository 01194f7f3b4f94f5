package service

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

func TestCheckInWithinWindowActivates(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.pendingAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))

    f.setNow(baseTime.Add(5 * time.Minute))
    res, err := f.lifecycle.CheckIn(context.Background(), r.ID, 7)
    require.NoError(t, err)
    assert.Equal(t, model.StatusActive, res.Status)
    assert.Equal(t, []string{"checked_in"}, f.pub.published())
}

func TestCheckInTooEarlyRejectedWithoutStateChange(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    start := baseTime.Add(time.Hour)
    r := f.pendingAt(seat.ID, 7, start, f.clk.EndOfDay(baseTime))

    // 16 minutes early, one outside the window.
    f.setNow(start.Add(-16 * time.Minute))
    _, err := f.lifecycle.CheckIn(context.Background(), r.ID, 7)
    assert.ErrorIs(t, err, ErrTooEarly)

    stored, ok := f.db.reservation(r.ID)
    require.True(t, ok)
    assert.Equal(t, model.StatusPending, stored.Status)
    assert.Empty(t, f.pub.published())
}

// Fifteen minutes early is the inclusive edge of the window.
func TestCheckInAtWindowEdgeSucceeds(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    start := baseTime.Add(time.Hour)
    r := f.pendingAt(seat.ID, 7, start, f.clk.EndOfDay(baseTime))

    f.setNow(start.Add(-15 * time.Minute))
    res, err := f.lifecycle.CheckIn(context.Background(), r.ID, 7)
    require.NoError(t, err)
    assert.Equal(t, model.StatusActive, res.Status)
}

func TestLateCheckInCancelsReservation(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.pendingAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))

    f.setNow(baseTime.Add(16 * time.Minute))
    _, err := f.lifecycle.CheckIn(context.Background(), r.ID, 7)
    assert.ErrorIs(t, err, ErrCheckinExpired)

    stored, ok := f.db.reservation(r.ID)
    require.True(t, ok)
    assert.Equal(t, model.StatusCancelled, stored.Status)
    // The seat was released, not occupied.
    assert.Equal(t, []string{"checkin_expired"}, f.pub.published())
}

func TestCheckInRequiresPending(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.activeAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))

    _, err := f.lifecycle.CheckIn(context.Background(), r.ID, 7)
    assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFinishTruncatesEndToActualUsage(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.activeAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))

    leave := baseTime.Add(3 * time.Hour)
    f.setNow(leave)
    res, err := f.lifecycle.Finish(context.Background(), r.ID, 7)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCompleted, res.Status)
    assert.True(t, res.EndTime.Equal(leave))
}

// Finishing before the start time is an early checkout of a booking
// that never began: it cancels, and no completed record with a
// backwards interval can exist.
func TestFinishBeforeStartCancelsInsteadOfCompleting(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    start := baseTime.Add(2 * time.Hour)
    r := f.pendingAt(seat.ID, 7, start, f.clk.EndOfDay(baseTime))

    res, err := f.lifecycle.Finish(context.Background(), r.ID, 7)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, res.Status)

    stored, _ := f.db.reservation(r.ID)
    assert.Equal(t, model.StatusCancelled, stored.Status)
    // The stored interval is untouched; only the status changed.
    assert.True(t, stored.StartTime.Equal(start))
}

// Finishing at the exact start instant also cancels: completing would
// write endTime == startTime.
func TestFinishAtExactStartCancels(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.activeAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))

    res, err := f.lifecycle.Finish(context.Background(), r.ID, 7)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, res.Status)

    stored, _ := f.db.reservation(r.ID)
    assert.Equal(t, model.StatusCancelled, stored.Status)
    assert.True(t, stored.StartTime.Before(stored.EndTime))
}

func TestCancelTerminalStateRejected(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.activeAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))

    f.setNow(baseTime.Add(time.Hour))
    _, err := f.lifecycle.Finish(context.Background(), r.ID, 7)
    require.NoError(t, err)

    _, err = f.lifecycle.Cancel(context.Background(), r.ID, 7)
    assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdjustConflictingWindowRejected(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    mine := f.pendingAt(seat.ID, 7, baseTime, baseTime.Add(time.Hour))
    f.pendingAt(seat.ID, 8, baseTime.Add(2*time.Hour), baseTime.Add(4*time.Hour))

    ctx := context.Background()
    _, err := f.lifecycle.Adjust(ctx, mine.ID, 7, baseTime, baseTime.Add(3*time.Hour))
    assert.ErrorIs(t, err, ErrSlotConflict)

    // Shrinking into free space is fine, and the overlap check ignores
    // the reservation's own current interval.
    res, err := f.lifecycle.Adjust(ctx, mine.ID, 7, baseTime, baseTime.Add(90*time.Minute))
    require.NoError(t, err)
    assert.True(t, res.EndTime.Equal(baseTime.Add(90*time.Minute)))
}

func TestAdjustRejectsEmptyInterval(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.pendingAt(seat.ID, 7, baseTime, baseTime.Add(time.Hour))

    ctx := context.Background()
    _, err := f.lifecycle.Adjust(ctx, r.ID, 7, baseTime, baseTime)
    assert.ErrorIs(t, err, ErrInvalidInterval)

    _, err = f.lifecycle.Adjust(ctx, r.ID, 7, baseTime.Add(time.Hour), baseTime)
    assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestDeleteActiveRejected(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.activeAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))
    ctx := context.Background()

    err := f.lifecycle.Delete(ctx, r.ID, 7)
    assert.ErrorIs(t, err, ErrInvalidTransition)

    _, err = f.lifecycle.Cancel(ctx, r.ID, 7)
    require.NoError(t, err)
    require.NoError(t, f.lifecycle.Delete(ctx, r.ID, 7))

    _, ok := f.db.reservation(r.ID)
    assert.False(t, ok)
}

func TestOwnershipEnforcedExceptForAdmins(t *testing.T) {
    f := newFixture(baseTime)
    seat := f.seedSeat()
    r := f.pendingAt(seat.ID, 7, baseTime, f.clk.EndOfDay(baseTime))
    ctx := context.Background()

    _, err := f.lifecycle.Cancel(ctx, r.ID, 9)
    assert.ErrorIs(t, err, ErrForbidden)

    // userID 0 is the admin override.
    _, err = f.lifecycle.Cancel(ctx, r.ID, 0)
    assert.NoError(t, err)
}
