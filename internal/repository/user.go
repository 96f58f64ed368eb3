package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/orders-service/internal/domain/user"
)

const (
	userColumns = `id, name, email, password, active, created_at`

	getUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	existsUserSQL     = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	listUsersSQL      = `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	createUserSQL = `INSERT INTO users (id, name, email, password, active)
		VALUES ($1, $2, $3, $4, $5)`

	updateUserSQL = `UPDATE users SET name = $2, email = $3, password = $4, active = $5
		WHERE id = $1`

	deleteUserSQL = `DELETE FROM users WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	db *DB
}

// NewUserRepository returns a UserRepository that uses the given DB.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a single user by id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &user.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetByEmail returns a single user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getUserByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("getting user by email %q: %w", email, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &user.NotFoundError{Email: email}
		}
		return nil, fmt.Errorf("getting user by email %q: %w", email, err)
	}
	return &u, nil
}

// Exists reports whether a user with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	if err := r.db.conn(ctx).QueryRow(ctx, existsUserSQL, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking user %s: %w", id, err)
	}
	return ok, nil
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.conn(ctx).Exec(ctx, createUserSQL,
		u.ID, u.Name, u.Email, u.Password, u.Active,
	)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", u.ID, err)
	}
	return nil
}

// Update persists the user's mutable fields.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	_, err := r.db.conn(ctx).Exec(ctx, updateUserSQL,
		u.ID, u.Name, u.Email, u.Password, u.Active,
	)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", u.ID, err)
	}
	return nil
}

// Delete removes the user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, deleteUserSQL, id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Active, &u.CreatedAt)
	return u, err
}
