// Command seed-db loads a demo dataset: two categories with products, a
// couple of coupons, and one demo user with a default address. Re-running
// it is safe; entities that already exist are left untouched.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/orders-service/internal/domain/catalog"
	"github.com/xenking/orders-service/internal/domain/coupon"
	"github.com/xenking/orders-service/internal/domain/user"
	"github.com/xenking/orders-service/internal/repository"
)

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	db := repository.NewDB(pool)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	catalogSvc := catalog.NewService(categoryRepo, productRepo)
	couponSvc := coupon.NewService(repository.NewCouponRepository(db))
	userSvc := user.NewService(repository.NewUserRepository(db), repository.NewAddressRepository(db), db)

	if err := seedCatalog(ctx, catalogSvc, categoryRepo); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedCoupons(ctx, couponSvc); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedDemoUser(ctx, userSvc); err != nil {
		return errors.Wrap(err, "seed demo user")
	}
	return nil
}

type seedProduct struct {
	name  string
	desc  string
	price int64
	stock int
	// weight in the shipping formula's weight units
	weight float64
}

var seedCatalogData = map[string][]seedProduct{
	"Electronics": {
		{name: "Wireless Headphones", desc: "Over-ear, noise cancelling", price: 200, stock: 50, weight: 1},
		{name: "Mechanical Keyboard", desc: "Tenkeyless, brown switches", price: 120, stock: 30, weight: 2},
		{name: "USB-C Dock", desc: "Dual display, 100W passthrough", price: 85, stock: 40, weight: 0.5},
	},
	"Books": {
		{name: "The Go Programming Language", desc: "Donovan & Kernighan", price: 45, stock: 100, weight: 0.8},
		{name: "Designing Data-Intensive Applications", desc: "Kleppmann", price: 55, stock: 80, weight: 1.1},
	},
}

func seedCatalog(ctx context.Context, svc *catalog.Service, categories catalog.CategoryRepository) error {
	for name, products := range seedCatalogData {
		cat, err := categories.GetByName(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "look up category %q", name)
		}
		if cat == nil {
			cat, err = svc.CreateCategory(ctx, catalog.CreateCategoryRequest{Name: name})
			if err != nil {
				return errors.Wrapf(err, "create category %q", name)
			}
			slog.Info("created category", slog.String("name", name))
		}

		for _, p := range products {
			_, err := svc.CreateProduct(ctx, catalog.CreateProductRequest{
				Name:          p.name,
				Description:   p.desc,
				Price:         decimal.NewFromInt(p.price),
				StockQuantity: p.stock,
				Weight:        decimal.NewFromFloat(p.weight),
				CategoryID:    cat.ID,
			})
			if err != nil {
				var exists *catalog.AlreadyExistsError
				if errors.As(err, &exists) {
					continue
				}
				return errors.Wrapf(err, "create product %q", p.name)
			}
			slog.Info("created product", slog.String("name", p.name))
		}
	}
	return nil
}

func seedCoupons(ctx context.Context, svc *coupon.Service) error {
	now := time.Now()
	year := now.AddDate(1, 0, 0)

	ten := decimal.NewFromInt(10)
	hundred := decimal.NewFromInt(100)
	maxUses := 1000

	seeds := []coupon.CreateRequest{
		{
			Code:               "WELCOME10",
			DiscountPercentage: &ten,
			ValidFrom:          now,
			ValidUntil:         year,
			MaxTotalUses:       &maxUses,
		},
		{
			Code:                  "FLAT10",
			DiscountFixed:         &ten,
			ValidFrom:             now,
			ValidUntil:            year,
			MinimumPurchaseAmount: &hundred,
		},
	}

	for _, req := range seeds {
		if _, err := svc.Create(ctx, req); err != nil {
			var exists *coupon.AlreadyExistsError
			if errors.As(err, &exists) {
				continue
			}
			return errors.Wrapf(err, "create coupon %s", req.Code)
		}
		slog.Info("created coupon", slog.String("code", req.Code))
	}
	return nil
}

func seedDemoUser(ctx context.Context, svc *user.Service) error {
	u, err := svc.Create(ctx, user.CreateUserRequest{
		Name:     "Demo User",
		Email:    "demo@example.com",
		Password: "demo-password",
	})
	if err != nil {
		var exists *user.AlreadyExistsError
		if errors.As(err, &exists) {
			return nil
		}
		return errors.Wrap(err, "create user")
	}
	slog.Info("created user", slog.String("email", u.Email))

	_, err = svc.CreateAddress(ctx, u.ID, user.CreateAddressRequest{
		PostalCode:   "01310-100",
		Street:       "Avenida Paulista",
		Number:       "1000",
		Neighborhood: "Bela Vista",
		City:         "Sao Paulo",
		State:        "SP",
		Default:      true,
	})
	if err != nil {
		return errors.Wrap(err, "create address")
	}
	slog.Info("created default address", slog.String("user", u.Email))
	return nil
}
