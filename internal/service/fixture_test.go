package service

import (
    "sync"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/clock"
    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// cst is the fixed civil timezone used by all service tests.  A fixed
// zone avoids depending on the host's tzdata.
var cst = time.FixedZone("CST", 8*60*60)

// fixture wires the whole core against the in-memory store with a
// movable frozen clock.
type fixture struct {
    db  *memDB
    pub *fakePublisher

    clk       *clock.Clock
    cache     *StatusCache
    sweeper   *Sweeper
    resolver  *StatusResolver
    admission *AdmissionController
    lifecycle *LifecycleService

    mu  sync.Mutex
    now time.Time
}

func newFixture(start time.Time) *fixture {
    f := &fixture{db: newMemDB(), pub: &fakePublisher{}, now: start}
    f.clk = clock.NewFixed(cst, func() time.Time {
        f.mu.Lock()
        defer f.mu.Unlock()
        return f.now
    })

    policy := DefaultPolicy()
    seats := seatStore{db: f.db}
    zones := zoneStore{db: f.db}
    store := resStore{db: f.db}

    f.cache = NewStatusCache(16, time.Minute)
    f.sweeper = NewSweeper(store, f.cache, f.pub, f.clk, policy)
    f.resolver = NewStatusResolver(seats, store, f.cache, f.sweeper, f.clk, policy)
    f.admission = NewAdmissionController(seats, zones, store, f.resolver, f.cache, f.pub, f.clk, policy)
    f.lifecycle = NewLifecycleService(seats, store, f.cache, f.pub, f.clk, policy)
    return f
}

func (f *fixture) setNow(t time.Time) {
    f.mu.Lock()
    f.now = t
    f.mu.Unlock()
}

func (f *fixture) advance(d time.Duration) {
    f.mu.Lock()
    f.now = f.now.Add(d)
    f.mu.Unlock()
}

// seedSeat creates an active zone with one available seat and returns
// the seat.
func (f *fixture) seedSeat() model.Seat {
    zone := f.db.addZone(model.Zone{Name: "quiet study", Floor: 2, Active: true})
    return f.db.addSeat(model.Seat{ZoneID: zone.ID, Number: "A-01", Available: true})
}

func (f *fixture) pendingAt(seatID, userID uint64, start, end time.Time) model.Reservation {
    return f.db.addReservation(model.Reservation{
        SeatID:    seatID,
        UserID:    userID,
        StartTime: start,
        EndTime:   end,
        Status:    model.StatusPending,
        Type:      model.TypeWalkIn,
    })
}

func (f *fixture) activeAt(seatID, userID uint64, start, end time.Time) model.Reservation {
    return f.db.addReservation(model.Reservation{
        SeatID:    seatID,
        UserID:    userID,
        StartTime: start,
        EndTime:   end,
        Status:    model.StatusActive,
        Type:      model.TypeWalkIn,
    })
}
