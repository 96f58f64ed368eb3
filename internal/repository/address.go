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
	addressColumns = `id, user_id, postal_code, street, number, complement,
		neighborhood, city, state, is_default, created_at`

	getAddressByIDSQL = `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	listAddressesByUserSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE user_id = $1 ORDER BY created_at`

	createAddressSQL = `INSERT INTO addresses
		(id, user_id, postal_code, street, number, complement, neighborhood, city, state, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateAddressSQL = `UPDATE addresses SET postal_code = $2, street = $3, number = $4,
		complement = $5, neighborhood = $6, city = $7, state = $8, is_default = $9
		WHERE id = $1`

	deleteAddressSQL = `DELETE FROM addresses WHERE id = $1`

	clearDefaultAddressSQL = `UPDATE addresses SET is_default = FALSE
		WHERE user_id = $1 AND id <> $2 AND is_default`
)

var _ user.AddressRepository = (*AddressRepository)(nil)

// AddressRepository implements user.AddressRepository backed by PostgreSQL.
type AddressRepository struct {
	db *DB
}

// NewAddressRepository returns an AddressRepository that uses the given DB.
func NewAddressRepository(db *DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// GetByID returns a single address by id.
func (r *AddressRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.Address, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getAddressByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting address %s: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &user.AddressNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting address %s: %w", id, err)
	}
	return &a, nil
}

// ListByUser returns the user's addresses ordered by creation time.
func (r *AddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]user.Address, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listAddressesByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for user %s: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// Create persists a new address.
func (r *AddressRepository) Create(ctx context.Context, a *user.Address) error {
	_, err := r.db.conn(ctx).Exec(ctx, createAddressSQL,
		a.ID, a.UserID, a.PostalCode, a.Street, a.Number, nullIfEmpty(a.Complement),
		a.Neighborhood, a.City, a.State, a.Default,
	)
	if err != nil {
		return fmt.Errorf("creating address %s: %w", a.ID, err)
	}
	return nil
}

// Update persists the address's mutable fields.
func (r *AddressRepository) Update(ctx context.Context, a *user.Address) error {
	_, err := r.db.conn(ctx).Exec(ctx, updateAddressSQL,
		a.ID, a.PostalCode, a.Street, a.Number, nullIfEmpty(a.Complement),
		a.Neighborhood, a.City, a.State, a.Default,
	)
	if err != nil {
		return fmt.Errorf("updating address %s: %w", a.ID, err)
	}
	return nil
}

// Delete removes the address.
func (r *AddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, deleteAddressSQL, id)
	if err != nil {
		return fmt.Errorf("deleting address %s: %w", id, err)
	}
	return nil
}

// ClearDefault unsets the default flag on the user's other addresses.
func (r *AddressRepository) ClearDefault(ctx context.Context, userID, exceptID uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, clearDefaultAddressSQL, userID, exceptID)
	if err != nil {
		return fmt.Errorf("clearing default addresses for user %s: %w", userID, err)
	}
	return nil
}

func scanAddress(row pgx.CollectableRow) (user.Address, error) {
	var (
		a          user.Address
		complement *string
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.PostalCode, &a.Street, &a.Number, &complement,
		&a.Neighborhood, &a.City, &a.State, &a.Default, &a.CreatedAt,
	)
	if complement != nil {
		a.Complement = *complement
	}
	return a, err
}

// nullIfEmpty maps empty strings to SQL NULL for optional text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
