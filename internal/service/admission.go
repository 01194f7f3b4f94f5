package service

import (
    "context"
    "errors"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/clock"
    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// AdmissionController validates and creates reservations.  The
// preconditions run in a fixed order (seat availability, zone
// activity, user quota) so that callers always get the same error for
// the same state, and the final overlap-check-then-insert runs inside
// one store transaction: that boundary is what makes the otherwise
// racy read-then-write sequence safe against double-booking.
type AdmissionController struct {
    seats     SeatStore
    zones     ZoneStore
    store     ReservationStore
    resolver  *StatusResolver
    cache     *StatusCache
    publisher EventPublisher
    clk       *clock.Clock
    policy    Policy
}

// NewAdmissionController wires the controller.  cache and publisher
// may be nil.
func NewAdmissionController(seats SeatStore, zones ZoneStore, store ReservationStore, resolver *StatusResolver, cache *StatusCache, publisher EventPublisher, clk *clock.Clock, policy Policy) *AdmissionController {
    if seats == nil || zones == nil || store == nil || resolver == nil || clk == nil {
        panic("nil dependency passed to NewAdmissionController")
    }
    return &AdmissionController{
        seats:     seats,
        zones:     zones,
        store:     store,
        resolver:  resolver,
        cache:     cache,
        publisher: publisher,
        clk:       clk,
        policy:    policy,
    }
}

// CreateReservation admits a walk-in or advance reservation for the
// given seat and user.  requestedStart is required for advance
// bookings and ignored for walk-ins.  On success the reservation is
// persisted as pending, the seat-status cache for the affected zone is
// invalidated, and a created event is published.
func (a *AdmissionController) CreateReservation(ctx context.Context, seatID, userID uint64, reservationType string, requestedStart *time.Time) (*model.Reservation, error) {
    // Walk-in admission reads seat status, so overdue pendings must be
    // swept first or an abandoned reservation could block the seat.
    if a.resolver.sweeper != nil {
        if err := a.resolver.sweeper.RunIfDue(ctx); err != nil {
            return nil, err
        }
    }
    seat, err := a.seats.GetByID(ctx, seatID)
    if err != nil {
        return nil, err
    }
    if !seat.Available {
        return nil, ErrSeatUnavailable
    }
    zone, err := a.zones.GetByID(ctx, seat.ZoneID)
    if err != nil {
        return nil, err
    }
    if !zone.Active {
        return nil, ErrZoneInactive
    }
    live, err := a.store.CountLiveForUser(ctx, userID)
    if err != nil {
        return nil, err
    }
    if live >= a.policy.MaxLiveReservations {
        return nil, ErrQuotaExceeded
    }

    now := a.clk.Now()
    var start, end time.Time
    switch reservationType {
    case model.TypeWalkIn:
        start = now
        end, err = a.walkInEnd(ctx, seat, now)
        if err != nil {
            return nil, err
        }
    case model.TypeAdvance:
        start, end, err = a.advanceWindow(now, requestedStart)
        if err != nil {
            return nil, err
        }
    default:
        return nil, errors.New("unknown reservation type")
    }

    res := &model.Reservation{
        SeatID:    seatID,
        UserID:    userID,
        StartTime: start,
        EndTime:   end,
        Status:    model.StatusPending,
        Type:      reservationType,
    }

    // Atomic commit step: quota re-check, overlap re-check and insert
    // share one transaction.  Two concurrent admissions for the same
    // seat serialize here; the loser gets ErrSlotConflict.
    err = a.store.InTx(ctx, func(tx ReservationTx) error {
        live, err := tx.CountLiveForUser(ctx, userID)
        if err != nil {
            return err
        }
        if live >= a.policy.MaxLiveReservations {
            return ErrQuotaExceeded
        }
        conflicts, err := tx.Overlapping(ctx, seatID, start, end)
        if err != nil {
            return err
        }
        if len(conflicts) > 0 {
            return ErrSlotConflict
        }
        return tx.Insert(ctx, res)
    })
    if err != nil {
        // InTx maps serialization losers to ErrSlotConflict, so both
        // the explicit overlap hit and the racing insert surface the
        // same retryable error.
        return nil, err
    }

    if a.cache != nil {
        a.cache.InvalidateZone(seat.ZoneID)
    }
    if a.publisher != nil {
        a.publisher.PublishReservationEvent(ctx, "created", res)
    }
    return res, nil
}

// walkInEnd derives the end time of a walk-in starting now from the
// seat's resolved status: free runs to end of day, limited runs to the
// buffer boundary before the next reservation, occupied and locked
// reject the admission.
func (a *AdmissionController) walkInEnd(ctx context.Context, seat *model.Seat, now time.Time) (time.Time, error) {
    bySeat, err := a.store.ListLiveForSeats(ctx, []uint64{seat.ID}, now)
    if err != nil {
        return time.Time{}, err
    }
    av := a.resolver.resolve(*seat, bySeat[seat.ID], now)
    switch av.Status {
    case DisplayOccupied:
        return time.Time{}, ErrSeatOccupied
    case DisplayLocked:
        return time.Time{}, ErrSeatLocked
    case DisplayLimited:
        if av.AvailableUntil != nil {
            return *av.AvailableUntil, nil
        }
        // Fallback when the boundary is absent; the transactional
        // overlap check still rejects a real conflict.
        return a.clk.EndOfDay(now), nil
    default:
        return a.clk.EndOfDay(now), nil
    }
}

// advanceWindow validates an advance booking request.  Advance
// bookings open at the policy's evening hour and must start within
// tomorrow's civil day; they always run to the end of that day.
func (a *AdmissionController) advanceWindow(now time.Time, requestedStart *time.Time) (time.Time, time.Time, error) {
    if requestedStart == nil {
        return time.Time{}, time.Time{}, ErrInvalidAdvanceWindow
    }
    if now.Hour() < a.policy.AdvanceOpenHour {
        return time.Time{}, time.Time{}, ErrAdvanceWindowClosed
    }
    start := a.clk.In(*requestedStart)
    tomorrowStart := a.clk.Tomorrow(now)
    tomorrowEnd := a.clk.EndOfDay(tomorrowStart)
    // Strictly before the day's end instant: a start at exactly
    // tomorrowEnd would produce an empty interval.
    if start.Before(tomorrowStart) || !start.Before(tomorrowEnd) {
        return time.Time{}, time.Time{}, ErrInvalidAdvanceWindow
    }
    return start, tomorrowEnd, nil
}
