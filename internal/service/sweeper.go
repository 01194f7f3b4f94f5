package service

import (
    "context"
    "log"
    "sync"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/clock"
    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// Sweeper cancels pending reservations whose check-in window elapsed
// unused.  It is the system's only self-healing mechanism against
// abandoned pending reservations: a user who never checks in must not
// keep a seat slot forever.  Sweeps are rate-limited so that
// status-sensitive reads can trigger one cheaply without turning every
// request into a table scan.
type Sweeper struct {
    store     ReservationStore
    cache     *StatusCache
    publisher EventPublisher
    clk       *clock.Clock
    policy    Policy

    mu      sync.Mutex
    lastRun time.Time
}

// NewSweeper wires the sweeper.  cache and publisher may be nil.
func NewSweeper(store ReservationStore, cache *StatusCache, publisher EventPublisher, clk *clock.Clock, policy Policy) *Sweeper {
    if store == nil || clk == nil {
        panic("nil dependency passed to NewSweeper")
    }
    return &Sweeper{store: store, cache: cache, publisher: publisher, clk: clk, policy: policy}
}

// RunIfDue runs a sweep unless one already ran within the configured
// interval.  Resolvers call this before every status-sensitive read.
func (s *Sweeper) RunIfDue(ctx context.Context) error {
    s.mu.Lock()
    now := s.clk.Now()
    if !s.lastRun.IsZero() && now.Sub(s.lastRun) < s.policy.SweepInterval {
        s.mu.Unlock()
        return nil
    }
    s.lastRun = now
    s.mu.Unlock()
    return s.sweep(ctx, now)
}

// sweep bulk-cancels every pending reservation whose start time is
// older than now minus the check-in window.
func (s *Sweeper) sweep(ctx context.Context, now time.Time) error {
    cutoff := s.clk.AddMinutes(now, -s.policy.CheckinWindowMinutes)
    var expired []model.Reservation
    err := s.store.InTx(ctx, func(tx ReservationTx) error {
        rs, err := tx.ExpireOverduePending(ctx, cutoff)
        if err != nil {
            return err
        }
        expired = rs
        return nil
    })
    if err != nil {
        return err
    }
    if len(expired) == 0 {
        return nil
    }
    if s.cache != nil {
        // Expired rows may span many zones; drop everything.
        s.cache.Purge()
    }
    if s.publisher != nil {
        for i := range expired {
            s.publisher.PublishReservationEvent(ctx, "checkin_expired", &expired[i])
        }
    }
    log.Printf("sweeper: cancelled %d overdue pending reservations", len(expired))
    return nil
}

// Start launches a background loop that sweeps on the configured
// interval until the context is cancelled.  The request path still
// calls RunIfDue, so the loop only covers idle periods.
func (s *Sweeper) Start(ctx context.Context) {
    go func() {
        ticker := time.NewTicker(s.policy.SweepInterval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                if err := s.RunIfDue(ctx); err != nil {
                    log.Printf("sweeper: sweep failed: %v", err)
                }
            }
        }
    }()
}
