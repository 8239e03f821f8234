// Command sales-ingest bulk-imports sale records from gzipped NDJSON files.
//
// Each line holds one sale with its items. Files are parsed concurrently;
// a bloom filter over sale numbers screens out duplicates across files so a
// re-run of overlapping exports does not double-insert. Amounts and discounts
// are always recomputed through the domain factories, never trusted from the
// input.
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
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/devstore/sales-api/internal/domain/sale"
	"github.com/devstore/sales-api/internal/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

type saleLine struct {
	Number       string     `json:"number"`
	CustomerID   uuid.UUID  `json:"customerId"`
	CustomerName string     `json:"customerName"`
	BranchID     uuid.UUID  `json:"branchId"`
	BranchName   string     `json:"branchName"`
	Items        []itemLine `json:"items"`
}

type itemLine struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.ndjson.gz sale files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.ndjson.gz files in %s", dataDir)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	repo := postgres.NewSaleRepository(pool)

	lines := make(chan saleLine, 1024)

	g, gctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			return parseFile(gctx, file, lines)
		})
	}
	go func() {
		_ = g.Wait()
		close(lines)
	}()

	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var inserted, skipped, invalid int64
	for line := range lines {
		if seen.TestOrAddString(line.Number) {
			skipped++
			continue
		}

		s, err := buildSale(line)
		if err != nil {
			invalid++
			slog.Warn("skipping invalid sale", "number", line.Number, "err", err)
			continue
		}

		if err := repo.Create(ctx, s); err != nil {
			return errors.Wrapf(err, "insert sale %q", line.Number)
		}
		inserted++
		if inserted%progressEvery == 0 {
			slog.Info("progress", "inserted", inserted, "skipped", skipped)
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("done", "inserted", inserted, "duplicates", skipped, "invalid", invalid)
	return nil
}

// parseFile streams one gzipped NDJSON file into the lines channel.
func parseFile(ctx context.Context, path string, lines chan<- saleLine) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader %s", path)
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		var line saleLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return errors.Wrapf(err, "decode line in %s", path)
		}

		select {
		case lines <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.Wrapf(scanner.Err(), "scan %s", path)
}

func buildSale(line saleLine) (*sale.Sale, error) {
	items := make([]*sale.SaleItem, len(line.Items))
	for i, it := range line.Items {
		item, err := sale.NewSaleItem(it.ProductID, it.ProductName, it.Quantity, it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return sale.NewSale(line.Number, line.CustomerID, line.CustomerName, line.BranchID, line.BranchName, items)
}
