package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/orders-service/internal/domain/order"
)

const (
	orderColumns = `id, created_at, status, client_id, address_id, coupon_id,
		total_amount, shipping_cost, discount_amount`

	getOrderByIDSQL      = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersByClientSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE client_id = $1 ORDER BY created_at`
	listOrdersByStatusSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 ORDER BY created_at`
	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at`

	createOrderSQL = `INSERT INTO orders
		(id, created_at, status, client_id, address_id, coupon_id, total_amount, shipping_cost, discount_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	createOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	listOrderItemsSQL = `SELECT id, product_id, quantity, unit_price FROM order_items
		WHERE order_id = $1`

	listOrderItemsForOrdersSQL = `SELECT order_id, id, product_id, quantity, unit_price
		FROM order_items WHERE order_id = ANY($1)`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db *DB
}

// NewOrderRepository returns an OrderRepository that uses the given DB.
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order and its items together.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	q := r.db.conn(ctx)

	_, err := q.Exec(ctx, createOrderSQL,
		o.ID, o.CreatedAt, o.Status, o.ClientID, o.AddressID, o.CouponID,
		o.TotalAmount, o.ShippingCost, o.DiscountAmount,
	)
	if err != nil {
		return fmt.Errorf("creating order %s: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err := q.Exec(ctx, createOrderItemSQL,
			item.ID, o.ID, item.ProductID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("creating order item %s: %w", item.ID, err)
		}
	}
	return nil
}

// GetByID returns the order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &order.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	itemRows, err := r.db.conn(ctx).Query(ctx, listOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %s: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %s: %w", id, err)
	}
	return &o, nil
}

// ListByClient returns the client's orders with items, ordered by creation
// time.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]order.Order, error) {
	return r.list(ctx, listOrdersByClientSQL, clientID)
}

// ListByStatus returns all orders in the given status with items.
func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return r.list(ctx, listOrdersByStatusSQL, status)
}

// List returns all orders with items.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, listOrdersSQL)
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := r.db.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// Fetch all items for the page in one query and attach them.
	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	itemRows, err := r.db.conn(ctx).Query(ctx, listOrderItemsForOrdersSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID uuid.UUID
			item    order.Item
		)
		if err := itemRows.Scan(&orderID, &item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		if o, ok := index[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	_, err := r.db.conn(ctx).Exec(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("updating status for order %s: %w", id, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.CreatedAt, &status, &o.ClientID, &o.AddressID, &o.CouponID,
		&o.TotalAmount, &o.ShippingCost, &o.DiscountAmount,
	)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var item order.Item
	err := row.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice)
	return item, err
}
