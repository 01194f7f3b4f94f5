package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// UserRepo provides the minimal user persistence the identity plumbing
// needs: registration, login lookup and profile fetch.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
    return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, role, is_active, created_at, updated_at`

// Create inserts a new user.  A duplicate email surfaces as
// ErrEmailTaken via the unique index on users.email.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
    const q = `INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, u.Email, u.PasswordHash, u.Role)
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == 1062 {
            return ErrEmailTaken
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    u.ID = uint64(id)
    const sel = `SELECT is_active, created_at, updated_at FROM users WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, u.ID).Scan(&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail retrieves a user by email for login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
    return r.get(ctx, q, email)
}

// GetByID retrieves a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
    return r.get(ctx, q, id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg interface{}) (*model.User, error) {
    var u model.User
    err := r.db.QueryRowContext(ctx, query, arg).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrUserNotFound
        }
        return nil, err
    }
    return &u, nil
}
