// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

// ReservationQueueName is the durable queue carrying every reservation
// lifecycle event.
const ReservationQueueName = "reservation.events"

// ReservationEvent is published on every reservation state change:
// created, checked_in, completed, cancelled, checkin_expired, adjusted
// and deleted.  It carries enough information for downstream consumers
// to log, notify, or feed analytics without querying the primary
// database.  Timestamps are RFC 3339 strings in UTC.
type ReservationEvent struct {
    Action        string `json:"action"`
    ReservationID uint64 `json:"reservation_id"`
    UserID        uint64 `json:"user_id"`
    SeatID        uint64 `json:"seat_id"`
    Type          string `json:"type"`
    Status        string `json:"status"`
    StartsAt      string `json:"starts_at"`
    EndsAt        string `json:"ends_at"`
    EmittedAt     string `json:"emitted_at"`
}
