package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSession is the capability set the service layer needs from storage:
// the three record operations plus transactional commit/rollback. One
// session corresponds to one request-scoped transaction.
type PriceSession interface {
	// Insert appends one record and returns it with its assigned ID. The
	// row is visible to later statements in the same session; durability
	// waits for Commit.
	Insert(ctx context.Context, currency string, observedAt time.Time, price decimal.Decimal) (*PriceRecord, error)

	// ListPage returns one page ordered by date_ desc, id desc, plus the
	// unfiltered total row count taken in the same transaction.
	ListPage(ctx context.Context, page, pageSize int) ([]PriceRecord, int64, error)

	// DeleteAll removes every record and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// PriceStore opens request-scoped sessions.
type PriceStore interface {
	Begin(ctx context.Context) (PriceSession, error)
}
