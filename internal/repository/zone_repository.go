package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// ZoneRepo provides methods to create and retrieve zones.  It
// implements service.ZoneStore.
type ZoneRepo struct {
    db *sql.DB // db is the underlying database connection
}

// NewZoneRepo constructs a ZoneRepo with the given DB handle.
func NewZoneRepo(db *sql.DB) *ZoneRepo {
    return &ZoneRepo{db: db}
}

const zoneColumns = `id, name, floor, is_active, created_at, updated_at`

func scanZone(row interface {
    Scan(dest ...interface{}) error
}) (*model.Zone, error) {
    var z model.Zone
    if err := row.Scan(&z.ID, &z.Name, &z.Floor, &z.Active, &z.CreatedAt, &z.UpdatedAt); err != nil {
        return nil, err
    }
    return &z, nil
}

// Create inserts a new zone.  After insert the ID and timestamps are
// populated from the stored row.
func (r *ZoneRepo) Create(ctx context.Context, z *model.Zone) error {
    const q = `INSERT INTO zones (name, floor, is_active) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, z.Name, z.Floor, z.Active)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    z.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM zones WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, z.ID).Scan(&z.CreatedAt, &z.UpdatedAt)
}

// GetByID retrieves a zone by its ID.  It returns ErrZoneNotFound
// when no row is found.
func (r *ZoneRepo) GetByID(ctx context.Context, id uint64) (*model.Zone, error) {
    const q = `SELECT ` + zoneColumns + ` FROM zones WHERE id = ?`
    z, err := scanZone(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrZoneNotFound
        }
        return nil, err
    }
    return z, nil
}

// List returns all zones ordered by floor then name.
func (r *ZoneRepo) List(ctx context.Context) ([]model.Zone, error) {
    const q = `SELECT ` + zoneColumns + ` FROM zones ORDER BY floor, name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Zone, 0)
    for rows.Next() {
        z, err := scanZone(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *z)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Update rewrites a zone's name, floor and active flag.  Deactivating
// a zone stops new admissions for its seats without touching existing
// reservations.
func (r *ZoneRepo) Update(ctx context.Context, id uint64, name string, floor int32, active bool) error {
    const q = `UPDATE zones SET name = ?, floor = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, name, floor, active, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrZoneNotFound
    }
    return nil
}

// Delete removes a zone.  A zone that still owns seats cannot be
// deleted and yields ErrConflict.
func (r *ZoneRepo) Delete(ctx context.Context, id uint64) error {
    const check = `SELECT COUNT(*) FROM seats WHERE zone_id = ?`
    var n int
    if err := r.db.QueryRowContext(ctx, check, id).Scan(&n); err != nil {
        return err
    }
    if n > 0 {
        return ErrConflict
    }
    const q = `DELETE FROM zones WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return err
    }
    if affected, _ := res.RowsAffected(); affected == 0 {
        return ErrZoneNotFound
    }
    return nil
}
