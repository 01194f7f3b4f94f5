package model

import "time"

// Reservation statuses.  A reservation is created as pending, becomes
// active on check-in, and ends as completed or cancelled.  Completed
// and cancelled are terminal.
const (
    StatusPending   = "PENDING"
    StatusActive    = "ACTIVE"
    StatusCompleted = "COMPLETED"
    StatusCancelled = "CANCELLED"
)

// Reservation types.  A walk-in starts immediately; an advance
// reservation is for the next civil day and can only be booked in the
// evening.
const (
    TypeWalkIn  = "WALK_IN"
    TypeAdvance = "ADVANCE"
)

// Reservation records a user's claim on one seat for a contiguous
// half-open time interval [StartTime, EndTime).  For any seat, at most
// one reservation with status PENDING or ACTIVE may overlap any other
// such reservation in time.  StartTime < EndTime always holds.
//
// Fields:
//  ID        – primary key identifier.
//  SeatID    – seat being reserved.
//  UserID    – user who made the reservation.
//  StartTime – interval start (civil-timezone instant, inclusive).
//  EndTime   – interval end (civil-timezone instant, exclusive).
//  Status    – one of PENDING, ACTIVE, COMPLETED, CANCELLED.
//  Type      – WALK_IN or ADVANCE.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
    ID        uint64    // reservations.id
    SeatID    uint64    // reservations.seat_id
    UserID    uint64    // reservations.user_id
    StartTime time.Time // reservations.start_time
    EndTime   time.Time // reservations.end_time
    Status    string    // reservations.status
    Type      string    // reservations.reservation_type
    CreatedAt time.Time // reservations.created_at
    UpdatedAt time.Time // reservations.updated_at
}

// Live reports whether the reservation still claims its seat, i.e. it
// is pending or active.  Only live reservations participate in
// conflict detection and status resolution.
func (r Reservation) Live() bool {
    return r.Status == StatusPending || r.Status == StatusActive
}

// Overlaps reports whether the half-open interval [start, end) crosses
// this reservation's interval.
func (r Reservation) Overlaps(start, end time.Time) bool {
    return r.StartTime.Before(end) && start.Before(r.EndTime)
}
