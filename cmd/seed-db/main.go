// Command seed-db inserts demo sales for local development and integration
// runs. Sales are built through the domain factories so seeded discounts and
// totals match what the API would produce.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devstore/sales-api/internal/domain/sale"
	"github.com/devstore/sales-api/internal/postgres"
)

type seedSale struct {
	Number       string     `json:"number"`
	CustomerID   uuid.UUID  `json:"customerId"`
	CustomerName string     `json:"customerName"`
	BranchID     uuid.UUID  `json:"branchId"`
	BranchName   string     `json:"branchName"`
	Items        []seedItem `json:"items"`
}

type seedItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func main() {
	var (
		databaseURL string
		salesFile   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&salesFile, "sales-file", "db/seed/sales.json", "path to sales JSON file")
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

	if err := run(ctx, databaseURL, salesFile); err != nil {
		slog.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, salesFile string) error {
	raw, err := os.ReadFile(salesFile)
	if err != nil {
		return errors.Wrap(err, "read sales file")
	}

	var seeds []seedSale
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return errors.Wrap(err, "decode sales file")
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

	for _, seed := range seeds {
		items := make([]*sale.SaleItem, len(seed.Items))
		for i, it := range seed.Items {
			item, err := sale.NewSaleItem(it.ProductID, it.ProductName, it.Quantity, it.UnitPrice)
			if err != nil {
				return errors.Wrapf(err, "seed sale %q", seed.Number)
			}
			items[i] = item
		}

		s, err := sale.NewSale(seed.Number, seed.CustomerID, seed.CustomerName, seed.BranchID, seed.BranchName, items)
		if err != nil {
			return errors.Wrapf(err, "seed sale %q", seed.Number)
		}

		if err := repo.Create(ctx, s); err != nil {
			return errors.Wrapf(err, "insert sale %q", seed.Number)
		}
		slog.Info("seeded sale", "number", seed.Number, "amount", s.Amount.String())
	}

	return nil
}
