package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kjannette/pricetrack/internal/models"
	"github.com/kjannette/pricetrack/internal/validation"
)

// BidSource is the exchange capability the service needs: one bid quote for
// a canonical symbol against USDT.
type BidSource interface {
	FetchBid(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// PriceService runs the validate -> fetch -> persist pipeline and the
// paginated read-back. It holds no per-request state; the store and source
// are safe for concurrent use.
type PriceService struct {
	store    models.PriceStore
	source   BidSource
	pageSize int
}

func NewPriceService(store models.PriceStore, source BidSource, pageSize int) *PriceService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &PriceService{store: store, source: source, pageSize: pageSize}
}

// RecordCurrentPrice validates the raw symbol, fetches the current bid for
// SYMBOL/USDT and persists one record. Fail-fast: an invalid symbol never
// reaches the exchange, and a failed fetch never opens a transaction.
//
// The stored currency is the lower-cased form of the canonical upper-case
// symbol. The asymmetry (validate upper, store lower) is a deliberate
// compatibility contract; reads return whatever case was stored.
func (s *PriceService) RecordCurrentPrice(ctx context.Context, rawSymbol string) (*models.PriceRecord, error) {
	symbol, err := validation.NormalizeCurrency(rawSymbol)
	if err != nil {
		return nil, err
	}

	bid, err := s.source.FetchBid(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// Wall clock truncated to whole seconds, stored without an offset.
	// Callers treat the value as UTC by convention.
	observedAt := time.Now().UTC().Truncate(time.Second)

	session, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback(ctx)

	rec, err := session.Insert(ctx, strings.ToLower(symbol), observedAt, bid)
	if err != nil {
		return nil, err
	}
	if err := session.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetHistory returns one page of records, newest first. Pages below 1 are
// coerced to 1; the page and total count come from a single storage session
// so they describe the same snapshot.
func (s *PriceService) GetHistory(ctx context.Context, page int) (*models.Page, error) {
	if page < 1 {
		page = 1
	}

	session, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback(ctx)

	records, total, err := session.ListPage(ctx, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	if err := session.Commit(ctx); err != nil {
		return nil, err
	}

	items := make([]models.PriceView, len(records))
	for i := range records {
		items[i] = records[i].View()
	}

	return &models.Page{
		Items:      items,
		Page:       page,
		PageSize:   s.pageSize,
		Total:      total,
		TotalPages: totalPages(total, s.pageSize),
	}, nil
}

// DeleteAll removes every stored record and returns how many were removed.
func (s *PriceService) DeleteAll(ctx context.Context) (int64, error) {
	session, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer session.Rollback(ctx)

	deleted, err := session.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := session.Commit(ctx); err != nil {
		return 0, err
	}
	return deleted, nil
}

// totalPages is ceil(total/pageSize), but never below 1: an empty history
// still has one (empty) page.
func totalPages(total int64, pageSize int) int64 {
	if total == 0 {
		return 1
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
