package handler

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the domain-level counters emitted by the API. Transport
// metrics (latency, status codes) come from the otelhttp middleware.
type metrics struct {
	ordersPlaced    metric.Int64Counter
	ordersCancelled metric.Int64Counter
	reviewsCreated  metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter("orders-api")

	placed, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders successfully placed"))
	if err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}

	cancelled, err := meter.Int64Counter("orders.cancelled",
		metric.WithDescription("Orders cancelled"))
	if err != nil {
		return nil, errors.Wrap(err, "orders.cancelled counter")
	}

	reviews, err := meter.Int64Counter("reviews.created",
		metric.WithDescription("Product reviews created"))
	if err != nil {
		return nil, errors.Wrap(err, "reviews.created counter")
	}

	return &metrics{
		ordersPlaced:    placed,
		ordersCancelled: cancelled,
		reviewsCreated:  reviews,
	}, nil
}
