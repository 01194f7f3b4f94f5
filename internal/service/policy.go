package service

import "time"

// Policy bundles the reservation policy constants.  All of them are
// overridable through the environment; see config.Load.
type Policy struct {
    // MinAvailableMinutes is the floor under which a seat with an
    // upcoming reservation is reported locked instead of limited.
    // Users are never offered a sliver of time shorter than this.
    MinAvailableMinutes int

    // BufferMinutes is the turnover buffer kept free between
    // consecutive reservations on one seat.
    BufferMinutes int

    // CheckinWindowMinutes bounds the symmetric window around a
    // reservation's start during which check-in is accepted.
    CheckinWindowMinutes int

    // AdvanceOpenHour is the civil hour (0-23) from which advance
    // bookings for the next day are accepted.
    AdvanceOpenHour int

    // MaxLiveReservations caps a user's simultaneous pending plus
    // active reservations.
    MaxLiveReservations int

    // SweepInterval rate-limits the expiry sweep.
    SweepInterval time.Duration
}

// DefaultPolicy returns the policy defaults used when no environment
// overrides are present.
func DefaultPolicy() Policy {
    return Policy{
        MinAvailableMinutes:  30,
        BufferMinutes:        15,
        CheckinWindowMinutes: 15,
        AdvanceOpenHour:      20,
        MaxLiveReservations:  3,
        SweepInterval:        60 * time.Second,
    }
}
