package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// ReservationRepo provides persistence for reservations and
// implements service.ReservationStore.  All timestamp columns are
// DATETIME(3) stored in UTC (the DSN uses loc=UTC with
// parseTime=true); the service layer re-expresses instants in the
// civil timezone through its Clock.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so callers sharing a transaction
// scope (admin maintenance scripts) can begin their own.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, seat_id, user_id, start_time, end_time, status, reservation_type, created_at, updated_at`

func scanReservation(row interface {
    Scan(dest ...interface{}) error
}) (*model.Reservation, error) {
    var m model.Reservation
    err := row.Scan(&m.ID, &m.SeatID, &m.UserID, &m.StartTime, &m.EndTime, &m.Status, &m.Type, &m.CreatedAt, &m.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &m, nil
}

// InTx runs fn inside a serializable transaction.  Serializable
// isolation is what makes the check-then-insert sequence of admission
// safe: two concurrent transactions inserting overlapping intervals
// for the same seat cannot both commit.  The losing transaction's
// deadlock or lock-wait error is mapped to service.ErrSlotConflict so
// callers see one clean, retryable error instead of a driver error.
func (r *ReservationRepo) InTx(ctx context.Context, fn func(tx service.ReservationTx) error) error {
    tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&reservationTx{tx: tx}); err != nil {
        if isSerializationFailure(err) {
            return service.ErrSlotConflict
        }
        return err
    }
    if err := tx.Commit(); err != nil {
        if isSerializationFailure(err) {
            return service.ErrSlotConflict
        }
        return err
    }
    committed = true
    return nil
}

// isSerializationFailure reports whether the error is MySQL's deadlock
// (1213) or lock wait timeout (1205); both mean this transaction lost
// a race against a concurrent one and may be retried.
func isSerializationFailure(err error) bool {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number == 1213 || me.Number == 1205
    }
    return false
}

// ListLiveForSeats bulk-fetches pending and active reservations for a
// set of seats in a single query and partitions them by seat ID.  Only
// rows whose interval has not fully elapsed at `from` are returned.
// This is the read powering the seat-map list view; it must stay one
// query regardless of how many seats are displayed.
func (r *ReservationRepo) ListLiveForSeats(ctx context.Context, seatIDs []uint64, from time.Time) (map[uint64][]model.Reservation, error) {
    out := make(map[uint64][]model.Reservation, len(seatIDs))
    if len(seatIDs) == 0 {
        return out, nil
    }
    placeholders := make([]string, 0, len(seatIDs))
    args := make([]interface{}, 0, len(seatIDs)+1)
    for _, id := range seatIDs {
        placeholders = append(placeholders, "?")
        args = append(args, id)
    }
    args = append(args, from.UTC())
    query := `SELECT ` + reservationColumns + `
              FROM reservations
              WHERE seat_id IN (` + strings.Join(placeholders, ",") + `)
                AND status IN ('PENDING','ACTIVE')
                AND end_time > ?
              ORDER BY seat_id, start_time`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        m, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out[m.SeatID] = append(out[m.SeatID], *m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetByID loads a single reservation outside any transaction.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    m, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, service.ErrReservationNotFound
        }
        return nil, err
    }
    return m, nil
}

// ListForUser returns all reservations of a user, newest first.
func (r *ReservationRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + `
               FROM reservations
               WHERE user_id = ?
               ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Reservation, 0)
    for rows.Next() {
        m, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// CountLiveForUser counts pending plus active reservations for the
// user outside any transaction.
func (r *ReservationRepo) CountLiveForUser(ctx context.Context, userID uint64) (int, error) {
    const q = `SELECT COUNT(*) FROM reservations WHERE user_id = ? AND status IN ('PENDING','ACTIVE')`
    var n int
    if err := r.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

// reservationTx implements service.ReservationTx over one *sql.Tx.
type reservationTx struct {
    tx *sql.Tx
}

// Overlapping returns the live reservations on a seat whose interval
// crosses [start, end).  The rows are locked with FOR UPDATE so a
// concurrent admission for the same seat blocks until this
// transaction resolves.
func (t *reservationTx) Overlapping(ctx context.Context, seatID uint64, start, end time.Time) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + `
               FROM reservations
               WHERE seat_id = ?
                 AND status IN ('PENDING','ACTIVE')
                 AND start_time < ?
                 AND end_time > ?
               ORDER BY start_time
               FOR UPDATE`
    rows, err := t.tx.QueryContext(ctx, q, seatID, end.UTC(), start.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var result []model.Reservation
    for rows.Next() {
        m, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Insert persists a new reservation and reads the row back to
// populate the generated ID and the database-assigned timestamps.
func (t *reservationTx) Insert(ctx context.Context, m *model.Reservation) error {
    const q = `INSERT INTO reservations (seat_id, user_id, start_time, end_time, status, reservation_type)
               VALUES (?, ?, ?, ?, ?, ?)`
    result, err := t.tx.ExecContext(ctx, q, m.SeatID, m.UserID, m.StartTime.UTC(), m.EndTime.UTC(), m.Status, m.Type)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
    return t.tx.QueryRowContext(ctx, sel, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID loads a reservation with a row lock so lifecycle transitions
// serialize per reservation.
func (t *reservationTx) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
    m, err := scanReservation(t.tx.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, service.ErrReservationNotFound
        }
        return nil, err
    }
    return m, nil
}

// UpdateStatus moves a reservation to the given status.
func (t *reservationTx) UpdateStatus(ctx context.Context, id uint64, status string) error {
    const q = `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP(3) WHERE id = ?`
    res, err := t.tx.ExecContext(ctx, q, status, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return service.ErrReservationNotFound
    }
    return nil
}

// UpdateTimes rewrites a reservation's interval.
func (t *reservationTx) UpdateTimes(ctx context.Context, id uint64, start, end time.Time) error {
    const q = `UPDATE reservations SET start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP(3) WHERE id = ?`
    res, err := t.tx.ExecContext(ctx, q, start.UTC(), end.UTC(), id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return service.ErrReservationNotFound
    }
    return nil
}

// CountLiveForUser counts the user's pending plus active reservations
// within the transaction, locking the counted rows so a racing
// admission by the same user cannot slip past the quota.
func (t *reservationTx) CountLiveForUser(ctx context.Context, userID uint64) (int, error) {
    const q = `SELECT COUNT(*) FROM (
                   SELECT id FROM reservations
                   WHERE user_id = ? AND status IN ('PENDING','ACTIVE')
                   FOR UPDATE
               ) live`
    var n int
    if err := t.tx.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

// ExpireOverduePending cancels every pending reservation whose start
// time is older than the cutoff and returns the affected rows.  The
// two-step select-then-update exists so the caller learns which
// reservations were released and can publish events for them.
func (t *reservationTx) ExpireOverduePending(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
    const sel = `SELECT ` + reservationColumns + `
                 FROM reservations
                 WHERE status = 'PENDING' AND start_time < ?
                 FOR UPDATE`
    rows, err := t.tx.QueryContext(ctx, sel, cutoff.UTC())
    if err != nil {
        return nil, err
    }
    var expired []model.Reservation
    for rows.Next() {
        m, scanErr := scanReservation(rows)
        if scanErr != nil {
            rows.Close()
            return nil, scanErr
        }
        m.Status = model.StatusCancelled
        expired = append(expired, *m)
    }
    if err = rows.Close(); err != nil {
        return nil, err
    }
    if len(expired) == 0 {
        return nil, nil
    }
    const upd = `UPDATE reservations
                 SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP(3)
                 WHERE status = 'PENDING' AND start_time < ?`
    if _, err := t.tx.ExecContext(ctx, upd, cutoff.UTC()); err != nil {
        return nil, err
    }
    return expired, nil
}

// Delete removes a reservation record.  State checks (never delete an
// active reservation) belong to the service layer.
func (t *reservationTx) Delete(ctx context.Context, id uint64) error {
    const q = `DELETE FROM reservations WHERE id = ?`
    res, err := t.tx.ExecContext(ctx, q, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return service.ErrReservationNotFound
    }
    return nil
}
