package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/orders-service/internal/domain/catalog"
	"github.com/xenking/orders-service/internal/domain/coupon"
	"github.com/xenking/orders-service/internal/domain/order"
	"github.com/xenking/orders-service/internal/domain/review"
	"github.com/xenking/orders-service/internal/domain/user"
)

// mapError converts a domain error to an HTTP status code and client-facing
// message. Unknown errors map to 500; the caller is responsible for not
// leaking their text to the client.
func mapError(err error) (int, string) {
	// Missing referenced entities.
	var (
		userNF     *user.NotFoundError
		addrNF     *user.AddressNotFoundError
		productNF  *catalog.NotFoundError
		categoryNF *catalog.CategoryNotFoundError
		couponNF   *coupon.NotFoundError
		orderNF    *order.NotFoundError
		reviewNF   *review.NotFoundError
	)
	switch {
	case errors.As(err, &userNF),
		errors.As(err, &addrNF),
		errors.As(err, &productNF),
		errors.As(err, &categoryNF),
		errors.As(err, &couponNF),
		errors.As(err, &orderNF),
		errors.As(err, &reviewNF):
		return http.StatusNotFound, err.Error()
	}

	// Uniqueness conflicts.
	var (
		userExists     *user.AlreadyExistsError
		productExists  *catalog.AlreadyExistsError
		categoryExists *catalog.CategoryAlreadyExistsError
		couponExists   *coupon.AlreadyExistsError
	)
	switch {
	case errors.As(err, &userExists),
		errors.As(err, &productExists),
		errors.As(err, &categoryExists),
		errors.As(err, &couponExists):
		return http.StatusConflict, err.Error()
	}

	// Business rule violations.
	var (
		couponInvalid *coupon.InvalidError
		inactive      *order.ProductInactiveError
		stock         *order.InsufficientStockError
		illegal       *order.IllegalStateError
		quantity      *order.InvalidQuantityError
		rating        *review.InvalidRatingError
		comment       *review.CommentTooLongError
	)
	switch {
	case errors.As(err, &couponInvalid),
		errors.As(err, &inactive),
		errors.As(err, &stock),
		errors.As(err, &illegal),
		errors.As(err, &quantity),
		errors.As(err, &rating),
		errors.As(err, &comment):
		return http.StatusUnprocessableEntity, err.Error()
	}

	if errors.Is(err, order.ErrEmptyItems) {
		return http.StatusBadRequest, err.Error()
	}

	return http.StatusInternalServerError, err.Error()
}
