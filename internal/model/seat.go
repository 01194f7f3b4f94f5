package model

import "time"

// Seat describes a reservable study seat inside a zone.  A seat
// belongs to exactly one zone for its whole lifetime.  The Available
// flag is an administrator-controlled hard disable: a seat with
// Available=false is always reported as locked regardless of its
// reservation state.  Seats removed from a layout that already have
// historical reservations are soft-disabled instead of deleted.
//
// Fields:
//  ID        – primary key identifier.
//  ZoneID    – owning zone (immutable reference).
//  Number    – display label, unique within a zone by convention.
//  Available – administrator availability flag.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Seat struct {
    ID        uint64    // seats.id
    ZoneID    uint64    // seats.zone_id
    Number    string    // seats.seat_number
    Available bool      // seats.is_available
    CreatedAt time.Time // seats.created_at
    UpdatedAt time.Time // seats.updated_at
}
