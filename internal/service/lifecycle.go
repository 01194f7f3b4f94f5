package service

import (
    "context"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/clock"
    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// LifecycleService moves reservations through their state machine:
//
//	pending  -> active     (check-in within the window)
//	pending  -> cancelled  (explicit cancel, expired check-in, sweep)
//	active   -> completed  (finish)
//	active   -> cancelled  (explicit cancel)
//
// Completed and cancelled are terminal; records may only be deleted
// from a non-active state.  Every transition runs in its own
// transaction and invalidates the seat-status cache on success.
type LifecycleService struct {
    seats     SeatStore
    store     ReservationStore
    cache     *StatusCache
    publisher EventPublisher
    clk       *clock.Clock
    policy    Policy
}

// NewLifecycleService wires the service.  cache and publisher may be
// nil.
func NewLifecycleService(seats SeatStore, store ReservationStore, cache *StatusCache, publisher EventPublisher, clk *clock.Clock, policy Policy) *LifecycleService {
    if seats == nil || store == nil || clk == nil {
        panic("nil dependency passed to NewLifecycleService")
    }
    return &LifecycleService{seats: seats, store: store, cache: cache, publisher: publisher, clk: clk, policy: policy}
}

// CheckIn confirms occupancy of a pending reservation.  It is accepted
// only while |now - startTime| stays within the check-in window.
// Before the window it fails with ErrTooEarly; after the window the
// reservation is cancelled as a side effect and ErrCheckinExpired is
// returned.  The seat is released, there is no recovery path.
func (l *LifecycleService) CheckIn(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error) {
    var res *model.Reservation
    var expired bool
    err := l.store.InTx(ctx, func(tx ReservationTx) error {
        r, err := l.ownedReservation(ctx, tx, reservationID, userID)
        if err != nil {
            return err
        }
        if r.Status != model.StatusPending {
            return ErrInvalidTransition
        }
        now := l.clk.Now()
        window := time.Duration(l.policy.CheckinWindowMinutes) * time.Minute
        switch {
        case now.Before(r.StartTime.Add(-window)):
            return ErrTooEarly
        case now.After(r.StartTime.Add(window)):
            expired = true
            if err := tx.UpdateStatus(ctx, r.ID, model.StatusCancelled); err != nil {
                return err
            }
            r.Status = model.StatusCancelled
            res = r
            return nil
        default:
            if err := tx.UpdateStatus(ctx, r.ID, model.StatusActive); err != nil {
                return err
            }
            r.Status = model.StatusActive
            res = r
            return nil
        }
    })
    if err != nil {
        return nil, err
    }
    if expired {
        l.afterTransition(ctx, res, "checkin_expired")
        return nil, ErrCheckinExpired
    }
    l.afterTransition(ctx, res, "checked_in")
    return res, nil
}

// Finish releases a seat when the user leaves.  Finishing at or before
// the reservation's start (an early checkout) cancels it instead of
// completing it, so a completed record always carries a positive
// interval.  Otherwise the end time is truncated to actual usage.
func (l *LifecycleService) Finish(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error) {
    var res *model.Reservation
    err := l.store.InTx(ctx, func(tx ReservationTx) error {
        r, err := l.ownedReservation(ctx, tx, reservationID, userID)
        if err != nil {
            return err
        }
        if r.Status != model.StatusActive && r.Status != model.StatusPending {
            return ErrInvalidTransition
        }
        now := l.clk.Now()
        if !r.StartTime.Before(now) {
            if err := tx.UpdateStatus(ctx, r.ID, model.StatusCancelled); err != nil {
                return err
            }
            r.Status = model.StatusCancelled
            res = r
            return nil
        }
        if err := tx.UpdateTimes(ctx, r.ID, r.StartTime, now); err != nil {
            return err
        }
        if err := tx.UpdateStatus(ctx, r.ID, model.StatusCompleted); err != nil {
            return err
        }
        r.EndTime = now
        r.Status = model.StatusCompleted
        res = r
        return nil
    })
    if err != nil {
        return nil, err
    }
    l.afterTransition(ctx, res, "finished")
    return res, nil
}

// Cancel aborts a pending or active reservation.  Any other state is
// an invalid transition.
func (l *LifecycleService) Cancel(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error) {
    var res *model.Reservation
    err := l.store.InTx(ctx, func(tx ReservationTx) error {
        r, err := l.ownedReservation(ctx, tx, reservationID, userID)
        if err != nil {
            return err
        }
        if !r.Live() {
            return ErrInvalidTransition
        }
        if err := tx.UpdateStatus(ctx, r.ID, model.StatusCancelled); err != nil {
            return err
        }
        r.Status = model.StatusCancelled
        res = r
        return nil
    })
    if err != nil {
        return nil, err
    }
    l.afterTransition(ctx, res, "cancelled")
    return res, nil
}

// Adjust rewrites the time range of a pending or active reservation.
// The new interval goes through the same transactional overlap check
// as creation; a losing adjustment surfaces ErrSlotConflict.
func (l *LifecycleService) Adjust(ctx context.Context, reservationID, userID uint64, start, end time.Time) (*model.Reservation, error) {
    if !start.Before(end) {
        return nil, ErrInvalidInterval
    }
    var res *model.Reservation
    err := l.store.InTx(ctx, func(tx ReservationTx) error {
        r, err := l.ownedReservation(ctx, tx, reservationID, userID)
        if err != nil {
            return err
        }
        if !r.Live() {
            return ErrInvalidTransition
        }
        conflicts, err := tx.Overlapping(ctx, r.SeatID, start, end)
        if err != nil {
            return err
        }
        for _, c := range conflicts {
            if c.ID != r.ID {
                return ErrSlotConflict
            }
        }
        if err := tx.UpdateTimes(ctx, r.ID, start, end); err != nil {
            return err
        }
        r.StartTime = start
        r.EndTime = end
        res = r
        return nil
    })
    if err != nil {
        return nil, err
    }
    l.afterTransition(ctx, res, "adjusted")
    return res, nil
}

// Delete removes a reservation record.  Active reservations must be
// finished or cancelled first.
func (l *LifecycleService) Delete(ctx context.Context, reservationID, userID uint64) error {
    var res *model.Reservation
    err := l.store.InTx(ctx, func(tx ReservationTx) error {
        r, err := l.ownedReservation(ctx, tx, reservationID, userID)
        if err != nil {
            return err
        }
        if r.Status == model.StatusActive {
            return ErrInvalidTransition
        }
        res = r
        return tx.Delete(ctx, r.ID)
    })
    if err != nil {
        return err
    }
    l.afterTransition(ctx, res, "deleted")
    return nil
}

// ownedReservation loads a reservation and enforces ownership.  Admin
// callers pass userID 0 to skip the ownership check.
func (l *LifecycleService) ownedReservation(ctx context.Context, tx ReservationTx, reservationID, userID uint64) (*model.Reservation, error) {
    r, err := tx.GetByID(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    if userID != 0 && r.UserID != userID {
        return nil, ErrForbidden
    }
    return r, nil
}

// afterTransition invalidates the affected zone's cached statuses and
// publishes a lifecycle event.  Cache invalidation must happen before
// the call returns so subsequent reads never observe the stale list.
func (l *LifecycleService) afterTransition(ctx context.Context, r *model.Reservation, action string) {
    if r == nil {
        return
    }
    if l.cache != nil {
        if seat, err := l.seats.GetByID(ctx, r.SeatID); err == nil {
            l.cache.InvalidateZone(seat.ZoneID)
        } else {
            l.cache.Purge()
        }
    }
    if l.publisher != nil {
        l.publisher.PublishReservationEvent(ctx, action, r)
    }
}
