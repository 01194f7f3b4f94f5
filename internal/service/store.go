package service

import (
    "context"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// ReservationTx is the unit of work handed to InTx callbacks.  All
// reads and writes performed through it belong to one database
// transaction; the check-then-insert sequence of admission relies on
// this boundary for its no-double-booking guarantee.
type ReservationTx interface {
    // Overlapping returns the live (pending or active) reservations on
    // a seat whose interval crosses the half-open range [start, end).
    Overlapping(ctx context.Context, seatID uint64, start, end time.Time) ([]model.Reservation, error)

    // Insert persists a new reservation and populates its ID and
    // timestamps.
    Insert(ctx context.Context, r *model.Reservation) error

    // GetByID loads a single reservation.
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)

    // UpdateStatus moves a reservation to the given status.
    UpdateStatus(ctx context.Context, id uint64, status string) error

    // UpdateTimes rewrites a reservation's half-open interval.
    UpdateTimes(ctx context.Context, id uint64, start, end time.Time) error

    // CountLiveForUser counts the user's pending plus active
    // reservations.
    CountLiveForUser(ctx context.Context, userID uint64) (int, error)

    // ExpireOverduePending cancels every pending reservation whose
    // start time is older than the cutoff and returns the affected
    // reservations so callers can invalidate caches and emit events.
    ExpireOverduePending(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)

    // Delete removes a reservation record.
    Delete(ctx context.Context, id uint64) error
}

// ReservationStore is the persistence abstraction over reservations.
// InTx runs the callback inside a single transaction with isolation
// strong enough that two concurrent overlapping inserts on the same
// seat cannot both commit; the loser surfaces ErrSlotConflict.
type ReservationStore interface {
    InTx(ctx context.Context, fn func(tx ReservationTx) error) error

    // ListLiveForSeats bulk-fetches the live reservations for a set of
    // seats in one query, partitioned by seat ID.  Only reservations
    // ending after `from` are returned; list views never need older
    // rows.
    ListLiveForSeats(ctx context.Context, seatIDs []uint64, from time.Time) (map[uint64][]model.Reservation, error)

    // GetByID loads a single reservation outside any transaction.
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)

    // ListForUser returns the user's reservations, newest first.
    ListForUser(ctx context.Context, userID uint64) ([]model.Reservation, error)

    // CountLiveForUser counts the user's pending plus active
    // reservations outside any transaction.  Admission re-checks the
    // count transactionally before inserting.
    CountLiveForUser(ctx context.Context, userID uint64) (int, error)
}

// SeatStore exposes the seat lookups the core needs.  Administrative
// CRUD lives on the concrete repository.
type SeatStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Seat, error)
    ListByZone(ctx context.Context, zoneID uint64) ([]model.Seat, error)
    ListAll(ctx context.Context) ([]model.Seat, error)
}

// ZoneStore exposes the zone lookups the core needs.
type ZoneStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Zone, error)
}

// EventPublisher emits reservation lifecycle events to the message
// broker.  Publishing is best effort: failures are logged by the
// implementation and never abort the originating request.
type EventPublisher interface {
    PublishReservationEvent(ctx context.Context, action string, r *model.Reservation)
}
