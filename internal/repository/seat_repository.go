package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// SeatRepo provides methods to work with seats in the database.  It
// implements service.SeatStore for the read paths the core needs and
// additionally exposes the administrative CRUD surface.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
    return &SeatRepo{db: db}
}

const seatColumns = `id, zone_id, seat_number, is_available, created_at, updated_at`

func scanSeat(row interface {
    Scan(dest ...interface{}) error
}) (*model.Seat, error) {
    var s model.Seat
    if err := row.Scan(&s.ID, &s.ZoneID, &s.Number, &s.Available, &s.CreatedAt, &s.UpdatedAt); err != nil {
        return nil, err
    }
    return &s, nil
}

// Create inserts a single seat record.  On success the seat's ID and
// timestamps are populated.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
    const q = `INSERT INTO seats (zone_id, seat_number, is_available) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.ZoneID, s.Number, s.Available)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM seats WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
    const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
    s, err := scanSeat(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, service.ErrSeatNotFound
        }
        return nil, err
    }
    return s, nil
}

// ListByZone retrieves all seats of a zone ordered by seat number.
func (r *SeatRepo) ListByZone(ctx context.Context, zoneID uint64) ([]model.Seat, error) {
    const q = `SELECT ` + seatColumns + ` FROM seats WHERE zone_id = ? ORDER BY seat_number`
    return r.list(ctx, q, zoneID)
}

// ListAll retrieves every seat ordered by zone then seat number.  The
// status resolver partitions the companion reservation query in
// memory, so one seat query is all the list view ever issues.
func (r *SeatRepo) ListAll(ctx context.Context) ([]model.Seat, error) {
    const q = `SELECT ` + seatColumns + ` FROM seats ORDER BY zone_id, seat_number`
    return r.list(ctx, q)
}

func (r *SeatRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Seat, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Seat, 0)
    for rows.Next() {
        s, err := scanSeat(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Update rewrites a seat's display number and availability flag.  The
// owning zone is immutable for the seat's lifetime, so zone_id is
// deliberately absent from the statement.
func (r *SeatRepo) Update(ctx context.Context, id uint64, number string, available bool) error {
    const q = `UPDATE seats SET seat_number = ?, is_available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, number, available, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return service.ErrSeatNotFound
    }
    return nil
}

// SetAvailability flips the administrator hard-disable flag.  Seats
// removed from a layout that already carry historical reservations
// are soft-disabled this way instead of deleted.
func (r *SeatRepo) SetAvailability(ctx context.Context, id uint64, available bool) error {
    const q = `UPDATE seats SET is_available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, available, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return service.ErrSeatNotFound
    }
    return nil
}

// Delete hard-deletes a seat.  It refuses with ErrConflict when any
// reservation references the seat; such seats must be soft-disabled
// instead.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
    const check = `SELECT COUNT(*) FROM reservations WHERE seat_id = ?`
    var n int
    if err := r.db.QueryRowContext(ctx, check, id).Scan(&n); err != nil {
        return err
    }
    if n > 0 {
        return ErrConflict
    }
    const q = `DELETE FROM seats WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return err
    }
    if affected, _ := res.RowsAffected(); affected == 0 {
        return service.ErrSeatNotFound
    }
    return nil
}
