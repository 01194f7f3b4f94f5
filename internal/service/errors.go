// Package service contains the seat availability resolver, the
// reservation admission controller and the lifecycle transition
// handlers.  Handlers translate the sentinel errors defined here into
// HTTP responses; domain-state errors are expected user-facing
// outcomes, not system failures.
package service

import "errors"

// Domain-state errors returned by admission preconditions and status
// resolution.  Each one maps to a distinct user-facing message.
var (
    // ErrSeatNotFound is returned when the referenced seat does not exist.
    ErrSeatNotFound = errors.New("seat not found")

    // ErrReservationNotFound is returned when the referenced
    // reservation does not exist.
    ErrReservationNotFound = errors.New("reservation not found")

    // ErrSeatUnavailable is returned when an administrator has hard
    // disabled the seat.
    ErrSeatUnavailable = errors.New("seat is unavailable")

    // ErrZoneInactive is returned when the seat's owning zone does not
    // accept reservations.
    ErrZoneInactive = errors.New("zone is inactive")

    // ErrQuotaExceeded is returned when the user already holds the
    // maximum number of live reservations.
    ErrQuotaExceeded = errors.New("active reservation quota exceeded")

    // ErrSeatOccupied is returned on a walk-in attempt against a seat
    // with a current occupant.
    ErrSeatOccupied = errors.New("seat is occupied")

    // ErrSeatLocked is returned on a walk-in attempt when the next
    // reservation starts too soon to leave usable time.
    ErrSeatLocked = errors.New("seat is locked")

    // ErrAdvanceWindowClosed is returned when an advance booking is
    // attempted before the evening opening hour.
    ErrAdvanceWindowClosed = errors.New("advance booking window not open yet")

    // ErrInvalidAdvanceWindow is returned when the requested advance
    // start time does not fall within tomorrow's civil day.
    ErrInvalidAdvanceWindow = errors.New("advance start time must fall within tomorrow")

    // ErrInvalidInterval is returned when a requested time range does
    // not satisfy start < end.
    ErrInvalidInterval = errors.New("start time must be before end time")

    // ErrInvalidTransition is returned when a lifecycle operation is
    // applied to a reservation in a state that does not permit it.
    ErrInvalidTransition = errors.New("invalid reservation state transition")

    // ErrTooEarly is returned when check-in is attempted before the
    // check-in window opens.
    ErrTooEarly = errors.New("too early to check in")

    // ErrCheckinExpired is returned when the check-in window has
    // already elapsed; the reservation is cancelled as a side effect.
    ErrCheckinExpired = errors.New("check-in window expired")

    // ErrForbidden is returned when a caller operates on a
    // reservation owned by someone else.
    ErrForbidden = errors.New("forbidden")
)

// ErrSlotConflict is the concurrency error: two admissions raced for
// overlapping intervals on the same seat and this one lost.  Callers
// may retry exactly once against a refreshed seat status.  The
// user-facing message is SlotConflictMessage.
var ErrSlotConflict = errors.New("time slot already booked")

// SlotConflictMessage is the message shown to users when their
// admission loses the conflict check.
const SlotConflictMessage = "该时段已被预约"
