package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. The forward path is
// WAITING_PAYMENT → PAID → PROCESSING → SHIPPED → DELIVERED; CANCELLED is
// reachable from every state except DELIVERED and CANCELLED itself.
type Status string

const (
	StatusWaitingPayment Status = "WAITING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusProcessing     Status = "PROCESSING"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusWaitingPayment, StatusPaid, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// Order is the priced, stock-committed result of a checkout. The amounts
// are computed once at creation and never recalculated; status is the only
// field that changes afterwards (besides the full reversal on cancel).
type Order struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Status         Status
	ClientID       uuid.UUID
	AddressID      uuid.UUID
	CouponID       *uuid.UUID
	Items          []Item
	TotalAmount    decimal.Decimal
	ShippingCost   decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Item is a single order line. UnitPrice is a snapshot of the product
// price at order time, independent of later price changes.
type Item struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// NotFoundError indicates a referenced order does not exist.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.ID)
}

// ProductInactiveError indicates an attempt to order a disabled product.
type ProductInactiveError struct {
	ProductName string
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %q is not active", e.ProductName)
}

// InsufficientStockError indicates a line item asked for more units than
// the product has available.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// IllegalStateError indicates a cancellation attempt on an order whose
// current status forbids it.
type IllegalStateError struct {
	Status Status
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("cannot cancel order with status %s", e.Status)
}

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID uuid.UUID
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// Repository defines persistence operations for orders. Create persists
// the order together with its items.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// TxRunner executes fn inside a single storage transaction. All repository
// calls made with the callback context join that transaction; a non-nil
// error from fn rolls everything back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
