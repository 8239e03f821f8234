package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"

	"github.com/devstore/sales-api/internal/domain/sale"
)

// sortColumns is the allow-list of sortable fields for the paged list query.
// Ordering is always by an explicit column name from this map; unknown keys
// fall back to the default so a caller can never inject arbitrary SQL.
var sortColumns = map[string]string{
	"number":       "number",
	"customerName": "customer_name",
	"branchName":   "branch_name",
	"amount":       "amount",
	"createdAt":    "created_at",
}

const defaultOrder = "created_at DESC"

const insertSaleSQL = `INSERT INTO sales (id, number, customer_id, customer_name, branch_id, branch_name, amount, is_cancelled, created_at, deleted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const upsertItemSQL = `INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, discount, amount, is_cancelled, deleted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		product_id = EXCLUDED.product_id,
		product_name = EXCLUDED.product_name,
		quantity = EXCLUDED.quantity,
		unit_price = EXCLUDED.unit_price,
		discount = EXCLUDED.discount,
		amount = EXCLUDED.amount,
		is_cancelled = EXCLUDED.is_cancelled,
		deleted_at = EXCLUDED.deleted_at`

const updateSaleSQL = `UPDATE sales SET
		customer_id = $2,
		customer_name = $3,
		branch_id = $4,
		branch_name = $5,
		amount = $6,
		is_cancelled = $7,
		deleted_at = $8
	WHERE id = $1`

const selectSale = `SELECT id, number, customer_id, customer_name, branch_id, branch_name, amount, is_cancelled, created_at, deleted_at FROM sales`

const selectItems = `SELECT id, sale_id, product_id, product_name, quantity, unit_price, discount, amount, is_cancelled, deleted_at FROM sale_items`

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository implements sale.Repository backed by PostgreSQL.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository returns a SaleRepository that uses the given pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Create persists a new sale and its items in one transaction.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, insertSaleSQL,
		s.ID, s.Number, s.CustomerID, s.CustomerName, s.BranchID, s.BranchName,
		s.Amount, s.Cancelled, s.CreatedAt, s.DeletedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert sale %q", s.ID)
	}

	for _, item := range s.Items {
		if err := execUpsertItem(ctx, tx, item); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID returns a non-cancelled sale with its live items eagerly loaded.
func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	s, err := r.querySale(ctx, selectSale+` WHERE id = $1 AND is_cancelled = FALSE`, id)
	if err != nil {
		return nil, err
	}

	items, err := r.queryItems(ctx, selectItems+` WHERE sale_id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

// GetForUpdate returns the sale by id alone with its full item list,
// including soft-deleted items. The update and delete flows need the complete
// collection to round-trip cancellation state.
func (r *SaleRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	s, err := r.querySale(ctx, selectSale+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	items, err := r.queryItems(ctx, selectItems+` WHERE sale_id = $1`, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

// List returns one page of non-cancelled sales, plus the total count of
// matching sales, ordered by the requested allow-listed column.
func (r *SaleRepository) List(ctx context.Context, params sale.ListParams) ([]sale.Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM sales WHERE is_cancelled = FALSE`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count sales")
	}

	order := defaultOrder
	if col, ok := sortColumns[params.OrderBy]; ok {
		order = col
	}

	query := fmt.Sprintf(`%s WHERE is_cancelled = FALSE ORDER BY %s LIMIT $1 OFFSET $2`, selectSale, order)
	rows, err := r.pool.Query(ctx, query, params.PageSize, (params.Page-1)*params.PageSize)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list sales")
	}
	defer rows.Close()

	var sales []sale.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "list sales rows")
	}

	if len(sales) == 0 {
		return sales, total, nil
	}

	ids := make([]uuid.UUID, len(sales))
	index := make(map[uuid.UUID]int, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
		index[sales[i].ID] = i
	}

	items, err := r.queryItems(ctx, selectItems+` WHERE sale_id = ANY($1) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, item := range items {
		i := index[item.SaleID]
		sales[i].Items = append(sales[i].Items, item)
	}

	return sales, total, nil
}

// Update persists the sale row and upserts every item in one transaction.
// Existing items carry their cancellation state; fresh items are inserted.
func (r *SaleRepository) Update(ctx context.Context, s *sale.Sale) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, updateSaleSQL,
		s.ID, s.CustomerID, s.CustomerName, s.BranchID, s.BranchName,
		s.Amount, s.Cancelled, s.DeletedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "update sale %q", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrNotFound
	}

	for _, item := range s.Items {
		if err := execUpsertItem(ctx, tx, item); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func execUpsertItem(ctx context.Context, tx pgx.Tx, item *sale.SaleItem) error {
	_, err := tx.Exec(ctx, upsertItemSQL,
		item.ID, item.SaleID, item.ProductID, item.ProductName,
		item.Quantity, item.UnitPrice, item.Discount, item.Amount,
		item.Cancelled, item.DeletedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert sale item %q", item.ID)
	}
	return nil
}

func (r *SaleRepository) querySale(ctx context.Context, query string, id uuid.UUID) (*sale.Sale, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get sale %q", id)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrapf(err, "get sale %q", id)
		}
		return nil, sale.ErrNotFound
	}
	return scanSale(rows)
}

func (r *SaleRepository) queryItems(ctx context.Context, query string, arg any) ([]*sale.SaleItem, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, errors.Wrap(err, "query sale items")
	}
	defer rows.Close()

	var items []*sale.SaleItem
	for rows.Next() {
		var item sale.SaleItem
		err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Discount, &item.Amount,
			&item.Cancelled, &item.DeletedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan sale item")
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sale item rows")
	}
	return items, nil
}

func scanSale(rows pgx.Rows) (*sale.Sale, error) {
	var s sale.Sale
	err := rows.Scan(
		&s.ID, &s.Number, &s.CustomerID, &s.CustomerName, &s.BranchID, &s.BranchName,
		&s.Amount, &s.Cancelled, &s.CreatedAt, &s.DeletedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "scan sale")
	}
	return &s, nil
}
