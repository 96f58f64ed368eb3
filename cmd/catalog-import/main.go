// Command catalog-import bulk-loads products from gzipped JSONL supplier
// feeds. Each line is one product:
//
//	{"name":"...","description":"...","price":12.5,"stockQuantity":10,"weight":0.5,"category":"Books"}
//
// Feeds overlap, so product names are deduplicated: a bloom filter screens
// out names that were definitely not seen before, and only maybe-seen
// names pay for an exact database lookup.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/orders-service/internal/domain/catalog"
	"github.com/xenking/orders-service/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000
)

type feedProduct struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Weight        decimal.Decimal `json:"weight"`
	Category      string          `json:"category"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz product feeds")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feeds")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz feeds found in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	db := repository.NewDB(pool)
	imp := &importer{
		categories: repository.NewCategoryRepository(db),
		products:   repository.NewProductRepository(db),
		seen:       bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}

	slog.Info("importing feeds", slog.Int("files", len(files)))

	if err := importFeeds(ctx, files, imp.writeAll); err != nil {
		return err
	}

	slog.Info("import summary",
		slog.Uint64("imported", imp.imported),
		slog.Uint64("duplicates", imp.duplicates),
	)
	return nil
}

// importFeeds fans the feed files out to concurrent readers and pipes every
// parsed line to a single write function. Readers decompress and parse
// concurrently; the one writer owns the bloom filter and the database, so
// no insert races on names. Readers and writer share one errgroup context:
// a failure on either side cancels the other, so a mid-import write error
// cannot leave readers blocked on a full channel.
func importFeeds(ctx context.Context, files []string, write func(ctx context.Context, lines <-chan feedProduct) error) error {
	lines := make(chan feedProduct, 1024)
	g, ctx := errgroup.WithContext(ctx)

	readers, readerCtx := errgroup.WithContext(ctx)
	for _, f := range files {
		readers.Go(readFeed(readerCtx, f, lines))
	}
	g.Go(func() error {
		defer close(lines)
		return readers.Wait()
	})
	g.Go(func() error {
		return write(ctx, lines)
	})

	return g.Wait()
}

// readFeed streams one gzipped JSONL feed into the lines channel.
func readFeed(ctx context.Context, path string, lines chan<- feedProduct) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count uint64
		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			var p feedProduct
			if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
				return errors.Wrapf(err, "parse line %d of %s", count+1, path)
			}
			if p.Name == "" || p.Category == "" || !p.Price.IsPositive() {
				slog.Warn("skipping invalid feed line",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("line", count+1),
				)
				continue
			}

			select {
			case lines <- p:
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("read progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("lines", count),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("feed complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("lines", count),
		)
		return nil
	}
}

type importer struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	seen       *bloom.BloomFilter

	imported   uint64
	duplicates uint64
}

func (imp *importer) writeAll(ctx context.Context, lines <-chan feedProduct) error {
	svc := catalog.NewService(imp.categories, imp.products)
	categoryIDs := make(map[string]catalog.Category)

	for p := range lines {
		// A negative bloom test means the name is definitely new; a
		// positive one may be a false positive, so confirm in the database.
		if imp.seen.TestString(p.Name) {
			existing, err := imp.products.GetByName(ctx, p.Name)
			if err != nil {
				return errors.Wrapf(err, "look up product %q", p.Name)
			}
			if existing != nil {
				imp.duplicates++
				continue
			}
		}

		cat, ok := categoryIDs[p.Category]
		if !ok {
			resolved, err := imp.resolveCategory(ctx, svc, p.Category)
			if err != nil {
				return err
			}
			cat = *resolved
			categoryIDs[p.Category] = cat
		}

		_, err := svc.CreateProduct(ctx, catalog.CreateProductRequest{
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price,
			StockQuantity: p.StockQuantity,
			Weight:        p.Weight,
			CategoryID:    cat.ID,
		})
		if err != nil {
			var exists *catalog.AlreadyExistsError
			if errors.As(err, &exists) {
				imp.duplicates++
				continue
			}
			return errors.Wrapf(err, "create product %q", p.Name)
		}

		imp.seen.AddString(p.Name)
		imp.imported++
		if imp.imported%progressEvery == 0 {
			slog.Info("write progress", slog.Uint64("imported", imp.imported))
		}
	}
	return nil
}

func (imp *importer) resolveCategory(ctx context.Context, svc *catalog.Service, name string) (*catalog.Category, error) {
	existing, err := imp.categories.GetByName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "look up category %q", name)
	}
	if existing != nil {
		return existing, nil
	}

	created, err := svc.CreateCategory(ctx, catalog.CreateCategoryRequest{Name: name})
	if err != nil {
		return nil, errors.Wrapf(err, "create category %q", name)
	}
	slog.Info("created category", slog.String("name", name))
	return created, nil
}
