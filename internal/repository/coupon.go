package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/orders-service/internal/domain/coupon"
)

const (
	couponColumns = `id, code, discount_percentage, discount_fixed, valid_from, valid_until,
		max_uses_per_customer, max_total_uses, current_uses, active, minimum_purchase_amount`

	getCouponByIDSQL            = `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	getCouponByCodeSQL          = `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	getCouponByCodeForUpdateSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 FOR UPDATE`
	existsCouponSQL             = `SELECT EXISTS (SELECT 1 FROM coupons WHERE id = $1)`
	listCouponsSQL              = `SELECT ` + couponColumns + ` FROM coupons ORDER BY code`

	createCouponSQL = `INSERT INTO coupons
		(id, code, discount_percentage, discount_fixed, valid_from, valid_until,
		 max_uses_per_customer, max_total_uses, current_uses, active, minimum_purchase_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updateCouponSQL = `UPDATE coupons SET discount_percentage = $2, discount_fixed = $3,
		valid_from = $4, valid_until = $5, max_uses_per_customer = $6, max_total_uses = $7,
		current_uses = $8, active = $9, minimum_purchase_amount = $10
		WHERE id = $1`

	deleteCouponSQL = `DELETE FROM coupons WHERE id = $1`

	incrementCouponUsesSQL = `UPDATE coupons SET current_uses = current_uses + 1 WHERE id = $1`
	decrementCouponUsesSQL = `UPDATE coupons SET current_uses = current_uses - 1 WHERE id = $1`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	db *DB
}

// NewCouponRepository returns a CouponRepository that uses the given DB.
func NewCouponRepository(db *DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// GetByID returns a single coupon by id.
func (r *CouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getCouponByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting coupon %s: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &coupon.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting coupon %s: %w", id, err)
	}
	return &c, nil
}

// GetByCode returns a single coupon by its code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.getByCode(ctx, getCouponByCodeSQL, code)
}

// GetByCodeForUpdate returns the coupon by code under a row lock so usage
// counter reads and writes from concurrent transactions serialize.
func (r *CouponRepository) GetByCodeForUpdate(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.getByCode(ctx, getCouponByCodeForUpdateSQL, code)
}

func (r *CouponRepository) getByCode(ctx context.Context, sql, code string) (*coupon.Coupon, error) {
	rows, err := r.db.conn(ctx).Query(ctx, sql, code)
	if err != nil {
		return nil, fmt.Errorf("getting coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &coupon.NotFoundError{Code: code}
		}
		return nil, fmt.Errorf("getting coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// Exists reports whether a coupon with the given id exists.
func (r *CouponRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	if err := r.db.conn(ctx).QueryRow(ctx, existsCouponSQL, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking coupon %s: %w", id, err)
	}
	return ok, nil
}

// List returns all coupons ordered by code.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// Create persists a new coupon.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.db.conn(ctx).Exec(ctx, createCouponSQL,
		c.ID, c.Code, c.DiscountPercentage, c.DiscountFixed, c.ValidFrom, c.ValidUntil,
		c.MaxUsesPerCustomer, c.MaxTotalUses, c.CurrentUses, c.Active, c.MinimumPurchaseAmount,
	)
	if err != nil {
		return fmt.Errorf("creating coupon %s: %w", c.ID, err)
	}
	return nil
}

// Update persists the coupon's mutable fields; the code is immutable.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.db.conn(ctx).Exec(ctx, updateCouponSQL,
		c.ID, c.DiscountPercentage, c.DiscountFixed, c.ValidFrom, c.ValidUntil,
		c.MaxUsesPerCustomer, c.MaxTotalUses, c.CurrentUses, c.Active, c.MinimumPurchaseAmount,
	)
	if err != nil {
		return fmt.Errorf("updating coupon %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes the coupon.
func (r *CouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, deleteCouponSQL, id)
	if err != nil {
		return fmt.Errorf("deleting coupon %s: %w", id, err)
	}
	return nil
}

// IncrementUses bumps the usage counter by one.
func (r *CouponRepository) IncrementUses(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, incrementCouponUsesSQL, id)
	if err != nil {
		return fmt.Errorf("incrementing uses for coupon %s: %w", id, err)
	}
	return nil
}

// DecrementUses lowers the usage counter by one.
func (r *CouponRepository) DecrementUses(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, decrementCouponUsesSQL, id)
	if err != nil {
		return fmt.Errorf("decrementing uses for coupon %s: %w", id, err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountPercentage, &c.DiscountFixed, &c.ValidFrom, &c.ValidUntil,
		&c.MaxUsesPerCustomer, &c.MaxTotalUses, &c.CurrentUses, &c.Active, &c.MinimumPurchaseAmount,
	)
	return c, err
}
