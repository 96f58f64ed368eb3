package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/orders-service/internal/domain/catalog"
	"github.com/xenking/orders-service/internal/domain/coupon"
	"github.com/xenking/orders-service/internal/domain/user"
)

// ErrEmptyItems is returned when an order is placed without line items.
var ErrEmptyItems = errors.New("order must contain at least one item")

// CreateRequest holds the input for placing an order.
type CreateRequest struct {
	ClientID   uuid.UUID
	AddressID  uuid.UUID
	CouponCode string
	Items      []CreateItem
}

// CreateItem is a requested order line.
type CreateItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// Filter selects orders for Get. Exactly one criterion is honored, in
// priority order: ID, then ClientID, then Status; with none set, all
// orders are returned.
type Filter struct {
	ID       *uuid.UUID
	ClientID *uuid.UUID
	Status   *Status
}

// Service orchestrates the order lifecycle: creation with stock commitment
// and coupon accounting, status transitions, and the compensating reversal
// on cancellation. Every top-level operation runs as one transaction.
type Service struct {
	orders    Repository
	users     user.Repository
	addresses user.AddressRepository
	products  catalog.ProductRepository
	coupons   coupon.Repository
	pricer    *Pricer
	tx        TxRunner
	now       func() time.Time
}

// NewService creates an order Service.
func NewService(
	orders Repository,
	users user.Repository,
	addresses user.AddressRepository,
	products catalog.ProductRepository,
	coupons coupon.Repository,
	pricer *Pricer,
	tx TxRunner,
) *Service {
	return &Service{
		orders:    orders,
		users:     users,
		addresses: addresses,
		products:  products,
		coupons:   coupons,
		pricer:    pricer,
		tx:        tx,
		now:       time.Now,
	}
}

// Create turns a cart into a priced, stock-committed order. Steps run in a
// fixed sequence inside one transaction: resolve client and address,
// resolve and validate the coupon, then per item lock the product row,
// verify it is active and in stock, decrement stock, and snapshot the
// current unit price; finally price the order, bump the coupon usage
// counter, and persist the aggregate as WAITING_PAYMENT. A failure at any
// step rolls back every earlier stock decrement.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	var o *Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		client, err := s.users.GetByID(ctx, req.ClientID)
		if err != nil {
			return err
		}

		address, err := s.addresses.GetByID(ctx, req.AddressID)
		if err != nil {
			return err
		}

		var cpn *coupon.Coupon
		if code := strings.TrimSpace(req.CouponCode); code != "" {
			cpn, err = s.coupons.GetByCodeForUpdate(ctx, code)
			if err != nil {
				return err
			}
			if err := coupon.Validate(cpn, s.now()); err != nil {
				return err
			}
		}

		items := make([]Item, len(req.Items))
		priced := make([]PricedItem, len(req.Items))
		for i, reqItem := range req.Items {
			p, err := s.products.GetForUpdate(ctx, reqItem.ProductID)
			if err != nil {
				return err
			}
			if !p.Active {
				return &ProductInactiveError{ProductName: p.Name}
			}
			if p.StockQuantity < reqItem.Quantity {
				return &InsufficientStockError{
					ProductName: p.Name,
					Available:   p.StockQuantity,
					Requested:   reqItem.Quantity,
				}
			}

			p.StockQuantity -= reqItem.Quantity
			if err := s.products.Update(ctx, p); err != nil {
				return errors.Wrapf(err, "commit stock for product %s", p.ID)
			}

			items[i] = Item{
				ID:        uuid.New(),
				ProductID: p.ID,
				Quantity:  reqItem.Quantity,
				UnitPrice: p.Price,
			}
			priced[i] = PricedItem{
				UnitPrice: p.Price,
				Weight:    p.Weight,
				Quantity:  reqItem.Quantity,
			}
		}

		quote, err := s.pricer.Quote(priced, address.PostalCode, cpn)
		if err != nil {
			return err
		}

		var couponID *uuid.UUID
		if cpn != nil {
			if err := s.coupons.IncrementUses(ctx, cpn.ID); err != nil {
				return errors.Wrap(err, "increment coupon uses")
			}
			couponID = &cpn.ID
		}

		o = &Order{
			ID:             uuid.New(),
			CreatedAt:      s.now(),
			Status:         StatusWaitingPayment,
			ClientID:       client.ID,
			AddressID:      address.ID,
			CouponID:       couponID,
			Items:          items,
			TotalAmount:    quote.TotalAmount,
			ShippingCost:   quote.ShippingCost,
			DiscountAmount: quote.DiscountAmount,
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns orders matching the filter's highest-priority criterion.
// Filtering by a client that does not exist is an error; a client with no
// orders yields an empty result.
func (s *Service) Get(ctx context.Context, f Filter) ([]Order, error) {
	if f.ID != nil {
		o, err := s.orders.GetByID(ctx, *f.ID)
		if err != nil {
			return nil, err
		}
		return []Order{*o}, nil
	}

	if f.ClientID != nil {
		ok, err := s.users.Exists(ctx, *f.ClientID)
		if err != nil {
			return nil, errors.Wrap(err, "check client")
		}
		if !ok {
			return nil, &user.NotFoundError{ID: *f.ClientID}
		}
		return s.orders.ListByClient(ctx, *f.ClientID)
	}

	if f.Status != nil {
		return s.orders.ListByStatus(ctx, *f.Status)
	}

	return s.orders.List(ctx)
}

// UpdateStatus sets the order's status unconditionally. Transition
// legality is only enforced by Cancel; external callers drive the forward
// path at their own discretion.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	var o *Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.Status = status
		return s.orders.UpdateStatus(ctx, id, status)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel reverses the order's side effects: every item returns its
// quantity to the product's stock, the coupon usage counter (if any) is
// decremented, and the order moves to CANCELLED. Delivered and already
// cancelled orders cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if o.Status == StatusDelivered || o.Status == StatusCancelled {
			return &IllegalStateError{Status: o.Status}
		}

		for _, item := range o.Items {
			p, err := s.products.GetForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			p.StockQuantity += item.Quantity
			if err := s.products.Update(ctx, p); err != nil {
				return errors.Wrapf(err, "restock product %s", p.ID)
			}
		}

		if o.CouponID != nil {
			if err := s.coupons.DecrementUses(ctx, *o.CouponID); err != nil {
				return errors.Wrap(err, "decrement coupon uses")
			}
		}

		return s.orders.UpdateStatus(ctx, id, StatusCancelled)
	})
}
