package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kjannette/pricetrack/internal/models"
)

// StorageError is the typed failure for any persistence problem. The
// repository never retries; callers decide what to do with it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

const maxListPage = 1 << 31

type PriceStore struct {
	pool *pgxpool.Pool
}

func NewPriceStore(pool *pgxpool.Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// Begin opens one transaction scoped to the calling request. The returned
// session must be finished with Commit or Rollback on every exit path.
func (s *PriceStore) Begin(ctx context.Context) (models.PriceSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin", err)
	}
	return &PriceSession{tx: tx}, nil
}

type PriceSession struct {
	tx pgx.Tx
}

// Insert appends one row and returns it with the assigned id. Price crosses
// the wire as text so NUMERIC(24,10) never touches binary floats.
func (s *PriceSession) Insert(ctx context.Context, currency string, observedAt time.Time, price decimal.Decimal) (*models.PriceRecord, error) {
	row := s.tx.QueryRow(ctx,
		`INSERT INTO currencies (currency, date_, price)
		 VALUES ($1, $2, $3::numeric) RETURNING id, currency, date_, price::text`,
		currency, observedAt, price.String(),
	)
	rec, err := scanPrice(row)
	if err != nil {
		return nil, storageErr("insert", err)
	}
	return rec, nil
}

// ListPage returns one newest-first page plus the unfiltered row count.
// Ties on date_ fall back to id desc so the most recent insert wins. Both
// queries run on the same transaction, keeping total consistent with the
// returned slice.
func (s *PriceSession) ListPage(ctx context.Context, page, pageSize int) ([]models.PriceRecord, int64, error) {
	// Page comes straight from the query string; clamp it so the offset
	// arithmetic cannot overflow into a negative OFFSET. Anything this deep
	// is an empty page either way.
	if page > maxListPage {
		page = maxListPage
	}
	offset := int64(page-1) * int64(pageSize)

	rows, err := s.tx.Query(ctx,
		`SELECT id, currency, date_, price::text FROM currencies
		 ORDER BY date_ DESC, id DESC OFFSET $1 LIMIT $2`,
		offset, pageSize,
	)
	if err != nil {
		return nil, 0, storageErr("list", err)
	}
	defer rows.Close()

	items, err := collectPrices(rows)
	if err != nil {
		return nil, 0, storageErr("list", err)
	}

	var total int64
	if err := s.tx.QueryRow(ctx, `SELECT COUNT(*) FROM currencies`).Scan(&total); err != nil {
		return nil, 0, storageErr("count", err)
	}

	return items, total, nil
}

// DeleteAll removes every row and reports how many were removed.
func (s *PriceSession) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.tx.Exec(ctx, `DELETE FROM currencies`)
	if err != nil {
		return 0, storageErr("delete", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PriceSession) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

// Rollback is a no-op after Commit, so it is safe to defer unconditionally.
func (s *PriceSession) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
		return storageErr("rollback", err)
	}
	return nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanPrice(row scannable) (*models.PriceRecord, error) {
	var (
		rec      models.PriceRecord
		priceStr string
	)
	if err := row.Scan(&rec.ID, &rec.Currency, &rec.Date, &priceStr); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", priceStr, err)
	}
	rec.Price = price
	return &rec, nil
}

func collectPrices(rows pgx.Rows) ([]models.PriceRecord, error) {
	var out []models.PriceRecord
	for rows.Next() {
		rec, err := scanPrice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
