package service

import (
    "context"
    "sort"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/clock"
    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// DisplayStatus is the four-state availability classification shown on
// the seat map.  The states are mutually exclusive.
type DisplayStatus string

const (
    // DisplayFree: no qualifying reservation within the 24h lookahead;
    // a new reservation may run until the end of the current civil day.
    DisplayFree DisplayStatus = "free"

    // DisplayLimited: the nearest future reservation is far enough
    // away; the seat is usable until its start minus the turnover
    // buffer.
    DisplayLimited DisplayStatus = "limited"

    // DisplayOccupied: a live reservation covers the current instant.
    DisplayOccupied DisplayStatus = "occupied"

    // DisplayLocked: either the administrator disabled the seat, or
    // the next reservation starts too soon to leave usable time.
    DisplayLocked DisplayStatus = "locked"
)

// SeatAvailability is the computed view of one seat at a point in
// time.  AvailableUntil is set only for free and limited seats;
// NextReservationAt is set whenever a future reservation exists within
// the lookahead horizon.
type SeatAvailability struct {
    SeatID            uint64        `json:"seat_id"`
    ZoneID            uint64        `json:"zone_id"`
    SeatNumber        string        `json:"seat_number"`
    Status            DisplayStatus `json:"status"`
    AvailableUntil    *time.Time    `json:"available_until,omitempty"`
    NextReservationAt *time.Time    `json:"next_reservation_at,omitempty"`
}

// StatusResolver computes seat display statuses.  List lookups go
// through a short-TTL bounded cache; the cache is never the source of
// truth because the real conflict check happens transactionally at
// write time.
type StatusResolver struct {
    seats   SeatStore
    store   ReservationStore
    cache   *StatusCache
    sweeper *Sweeper
    clk     *clock.Clock
    policy  Policy
}

// NewStatusResolver wires the resolver.  cache and sweeper may be nil;
// the resolver then skips caching and sweep-on-read respectively.
func NewStatusResolver(seats SeatStore, store ReservationStore, cache *StatusCache, sweeper *Sweeper, clk *clock.Clock, policy Policy) *StatusResolver {
    if seats == nil || store == nil || clk == nil {
        panic("nil dependency passed to NewStatusResolver")
    }
    return &StatusResolver{seats: seats, store: store, cache: cache, sweeper: sweeper, clk: clk, policy: policy}
}

// ListStatuses computes the availability of every seat, or of the
// seats in one zone when zoneID is non-nil.  The whole list is served
// from at most one seat query plus one bulk reservation query; results
// are cached per filter for a few seconds.
func (s *StatusResolver) ListStatuses(ctx context.Context, zoneID *uint64) ([]SeatAvailability, error) {
    if s.sweeper != nil {
        if err := s.sweeper.RunIfDue(ctx); err != nil {
            return nil, err
        }
    }
    key := cacheKeyAll
    if zoneID != nil {
        key = zoneCacheKey(*zoneID)
    }
    if s.cache != nil {
        if cached, ok := s.cache.Get(key); ok {
            return cached, nil
        }
    }

    var (
        seats []model.Seat
        err   error
    )
    if zoneID != nil {
        seats, err = s.seats.ListByZone(ctx, *zoneID)
    } else {
        seats, err = s.seats.ListAll(ctx)
    }
    if err != nil {
        return nil, err
    }

    now := s.clk.Now()
    ids := make([]uint64, 0, len(seats))
    for _, seat := range seats {
        ids = append(ids, seat.ID)
    }
    bySeat, err := s.store.ListLiveForSeats(ctx, ids, now)
    if err != nil {
        return nil, err
    }

    out := make([]SeatAvailability, 0, len(seats))
    for _, seat := range seats {
        out = append(out, s.resolve(seat, bySeat[seat.ID], now))
    }
    if s.cache != nil {
        s.cache.Set(key, out)
    }
    return out, nil
}

// ResolveSeat computes the availability of a single seat.  It bypasses
// the list cache so detail views always reflect the latest state.
func (s *StatusResolver) ResolveSeat(ctx context.Context, seatID uint64) (*SeatAvailability, error) {
    if s.sweeper != nil {
        if err := s.sweeper.RunIfDue(ctx); err != nil {
            return nil, err
        }
    }
    seat, err := s.seats.GetByID(ctx, seatID)
    if err != nil {
        return nil, err
    }
    now := s.clk.Now()
    bySeat, err := s.store.ListLiveForSeats(ctx, []uint64{seat.ID}, now)
    if err != nil {
        return nil, err
    }
    av := s.resolve(*seat, bySeat[seat.ID], now)
    return &av, nil
}

// resolve classifies one seat from its live reservations at the given
// instant.  Reservations must all be pending or active; callers fetch
// them with ListLiveForSeats.
func (s *StatusResolver) resolve(seat model.Seat, reservations []model.Reservation, now time.Time) SeatAvailability {
    av := SeatAvailability{SeatID: seat.ID, ZoneID: seat.ZoneID, SeatNumber: seat.Number}

    // Administrator hard-disable wins over everything else and carries
    // no "available until" time.
    if !seat.Available {
        av.Status = DisplayLocked
        return av
    }

    sort.Slice(reservations, func(i, j int) bool {
        return reservations[i].StartTime.Before(reservations[j].StartTime)
    })

    horizon := s.clk.Next24Hours(now)
    var current *model.Reservation
    var next *model.Reservation
    for i := range reservations {
        r := &reservations[i]
        if !r.StartTime.After(now) && now.Before(r.EndTime) {
            current = r
            continue
        }
        if r.StartTime.After(now) && next == nil && r.StartTime.Before(horizon) {
            next = r
        }
    }
    if next != nil {
        at := s.clk.In(next.StartTime)
        av.NextReservationAt = &at
    }

    if current != nil {
        av.Status = DisplayOccupied
        return av
    }
    if next == nil {
        av.Status = DisplayFree
        until := s.clk.EndOfDay(now)
        av.AvailableUntil = &until
        return av
    }
    // The floor is inclusive: exactly MinAvailableMinutes of remaining
    // time is already too little to offer.
    if s.clk.DiffMinutes(next.StartTime, now) <= s.policy.MinAvailableMinutes {
        av.Status = DisplayLocked
        return av
    }
    av.Status = DisplayLimited
    until := s.clk.AddMinutes(next.StartTime, -s.policy.BufferMinutes)
    av.AvailableUntil = &until
    return av
}
