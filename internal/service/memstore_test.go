package service

// In-memory store fakes used across the service tests.  InTx holds a
// single mutex for the whole callback and restores a snapshot on
// error, which mirrors the serializable-transaction semantics of the
// MySQL repository closely enough for concurrency tests: admissions
// racing for the same seat serialize, and exactly one wins.

import (
    "context"
    "errors"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

var errZoneMissing = errors.New("zone not found")

type memDB struct {
    mu           sync.Mutex
    zones        map[uint64]model.Zone
    seats        map[uint64]model.Seat
    reservations map[uint64]model.Reservation
    nextID       uint64

    liveQueries int // counts ListLiveForSeats calls to observe caching
}

func newMemDB() *memDB {
    return &memDB{
        zones:        make(map[uint64]model.Zone),
        seats:        make(map[uint64]model.Seat),
        reservations: make(map[uint64]model.Reservation),
    }
}

func (db *memDB) addZone(z model.Zone) model.Zone {
    db.mu.Lock()
    defer db.mu.Unlock()
    db.nextID++
    z.ID = db.nextID
    db.zones[z.ID] = z
    return z
}

func (db *memDB) addSeat(s model.Seat) model.Seat {
    db.mu.Lock()
    defer db.mu.Unlock()
    db.nextID++
    s.ID = db.nextID
    db.seats[s.ID] = s
    return s
}

func (db *memDB) addReservation(r model.Reservation) model.Reservation {
    db.mu.Lock()
    defer db.mu.Unlock()
    db.nextID++
    r.ID = db.nextID
    db.reservations[r.ID] = r
    return r
}

func (db *memDB) setSeatAvailable(id uint64, available bool) {
    db.mu.Lock()
    defer db.mu.Unlock()
    s := db.seats[id]
    s.Available = available
    db.seats[id] = s
}

func (db *memDB) reservation(id uint64) (model.Reservation, bool) {
    db.mu.Lock()
    defer db.mu.Unlock()
    r, ok := db.reservations[id]
    return r, ok
}

// seatStore adapts memDB to SeatStore.
type seatStore struct{ db *memDB }

func (s seatStore) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
    s.db.mu.Lock()
    defer s.db.mu.Unlock()
    seat, ok := s.db.seats[id]
    if !ok {
        return nil, ErrSeatNotFound
    }
    return &seat, nil
}

func (s seatStore) ListByZone(ctx context.Context, zoneID uint64) ([]model.Seat, error) {
    s.db.mu.Lock()
    defer s.db.mu.Unlock()
    out := make([]model.Seat, 0)
    for _, seat := range s.db.seats {
        if seat.ZoneID == zoneID {
            out = append(out, seat)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (s seatStore) ListAll(ctx context.Context) ([]model.Seat, error) {
    s.db.mu.Lock()
    defer s.db.mu.Unlock()
    out := make([]model.Seat, 0, len(s.db.seats))
    for _, seat := range s.db.seats {
        out = append(out, seat)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

// zoneStore adapts memDB to ZoneStore.
type zoneStore struct{ db *memDB }

func (z zoneStore) GetByID(ctx context.Context, id uint64) (*model.Zone, error) {
    z.db.mu.Lock()
    defer z.db.mu.Unlock()
    zone, ok := z.db.zones[id]
    if !ok {
        return nil, errZoneMissing
    }
    return &zone, nil
}

// resStore adapts memDB to ReservationStore.
type resStore struct{ db *memDB }

func (r resStore) InTx(ctx context.Context, fn func(tx ReservationTx) error) error {
    r.db.mu.Lock()
    defer r.db.mu.Unlock()
    snapshot := make(map[uint64]model.Reservation, len(r.db.reservations))
    for k, v := range r.db.reservations {
        snapshot[k] = v
    }
    if err := fn(memTx{db: r.db}); err != nil {
        r.db.reservations = snapshot
        return err
    }
    return nil
}

func (r resStore) ListLiveForSeats(ctx context.Context, seatIDs []uint64, from time.Time) (map[uint64][]model.Reservation, error) {
    r.db.mu.Lock()
    defer r.db.mu.Unlock()
    r.db.liveQueries++
    wanted := make(map[uint64]bool, len(seatIDs))
    for _, id := range seatIDs {
        wanted[id] = true
    }
    out := make(map[uint64][]model.Reservation)
    for _, res := range r.db.reservations {
        if wanted[res.SeatID] && res.Live() && res.EndTime.After(from) {
            out[res.SeatID] = append(out[res.SeatID], res)
        }
    }
    return out, nil
}

func (r resStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    r.db.mu.Lock()
    defer r.db.mu.Unlock()
    res, ok := r.db.reservations[id]
    if !ok {
        return nil, ErrReservationNotFound
    }
    return &res, nil
}

func (r resStore) ListForUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    r.db.mu.Lock()
    defer r.db.mu.Unlock()
    out := make([]model.Reservation, 0)
    for _, res := range r.db.reservations {
        if res.UserID == userID {
            out = append(out, res)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

func (r resStore) CountLiveForUser(ctx context.Context, userID uint64) (int, error) {
    r.db.mu.Lock()
    defer r.db.mu.Unlock()
    return countLiveLocked(r.db, userID), nil
}

func countLiveLocked(db *memDB, userID uint64) int {
    n := 0
    for _, res := range db.reservations {
        if res.UserID == userID && res.Live() {
            n++
        }
    }
    return n
}

// memTx operates on the maps with the InTx mutex already held.
type memTx struct{ db *memDB }

func (t memTx) Overlapping(ctx context.Context, seatID uint64, start, end time.Time) ([]model.Reservation, error) {
    out := make([]model.Reservation, 0)
    for _, res := range t.db.reservations {
        if res.SeatID == seatID && res.Live() && res.Overlaps(start, end) {
            out = append(out, res)
        }
    }
    return out, nil
}

func (t memTx) Insert(ctx context.Context, r *model.Reservation) error {
    t.db.nextID++
    r.ID = t.db.nextID
    r.CreatedAt = time.Now()
    r.UpdatedAt = r.CreatedAt
    t.db.reservations[r.ID] = *r
    return nil
}

func (t memTx) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    res, ok := t.db.reservations[id]
    if !ok {
        return nil, ErrReservationNotFound
    }
    return &res, nil
}

func (t memTx) UpdateStatus(ctx context.Context, id uint64, status string) error {
    res, ok := t.db.reservations[id]
    if !ok {
        return ErrReservationNotFound
    }
    res.Status = status
    res.UpdatedAt = time.Now()
    t.db.reservations[id] = res
    return nil
}

func (t memTx) UpdateTimes(ctx context.Context, id uint64, start, end time.Time) error {
    res, ok := t.db.reservations[id]
    if !ok {
        return ErrReservationNotFound
    }
    res.StartTime = start
    res.EndTime = end
    res.UpdatedAt = time.Now()
    t.db.reservations[id] = res
    return nil
}

func (t memTx) CountLiveForUser(ctx context.Context, userID uint64) (int, error) {
    return countLiveLocked(t.db, userID), nil
}

func (t memTx) ExpireOverduePending(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
    out := make([]model.Reservation, 0)
    for id, res := range t.db.reservations {
        if res.Status == model.StatusPending && res.StartTime.Before(cutoff) {
            res.Status = model.StatusCancelled
            res.UpdatedAt = time.Now()
            t.db.reservations[id] = res
            out = append(out, res)
        }
    }
    return out, nil
}

func (t memTx) Delete(ctx context.Context, id uint64) error {
    if _, ok := t.db.reservations[id]; !ok {
        return ErrReservationNotFound
    }
    delete(t.db.reservations, id)
    return nil
}

// fakePublisher records published actions.
type fakePublisher struct {
    mu      sync.Mutex
    actions []string
}

func (p *fakePublisher) PublishReservationEvent(ctx context.Context, action string, r *model.Reservation) {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.actions = append(p.actions, action)
}

func (p *fakePublisher) published() []string {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]string, len(p.actions))
    copy(out, p.actions)
    return out
}
