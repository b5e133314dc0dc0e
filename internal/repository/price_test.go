package repository_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kjannette/pricetrack/internal/models"
	"github.com/kjannette/pricetrack/internal/repository"
	"github.com/kjannette/pricetrack/internal/testutil"
)

// beginSession opens a transaction that is rolled back when the test ends,
// so integration tests never leave rows behind.
func beginSession(t *testing.T) models.PriceSession {
	t.Helper()
	pool := testutil.SetupPool(t)
	store := repository.NewPriceStore(pool)

	session, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	t.Cleanup(func() { _ = session.Rollback(context.Background()) })
	return session
}

func clear(t *testing.T, session models.PriceSession) {
	t.Helper()
	if _, err := session.DeleteAll(context.Background()); err != nil {
		t.Fatalf("DeleteAll (cleanup): %v", err)
	}
}

func TestPriceSession_InsertAssignsID(t *testing.T) {
	session := beginSession(t)
	ctx := context.Background()
	clear(t, session)

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rec, err := session.Insert(ctx, "btc", ts, decimal.RequireFromString("50000.12"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if rec.Currency != "btc" {
		t.Fatalf("currency mismatch: got %q", rec.Currency)
	}
	if !rec.Date.Equal(ts) {
		t.Fatalf("date mismatch: got %s", rec.Date)
	}
}

func TestPriceSession_DecimalFidelity(t *testing.T) {
	session := beginSession(t)
	ctx := context.Background()
	clear(t, session)

	want := decimal.RequireFromString("50000.1234567890")
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if _, err := session.Insert(ctx, "btc", ts, want); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	items, total, err := session.ListPage(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected exactly one row, got total=%d len=%d", total, len(items))
	}
	if !items[0].Price.Equal(want) {
		t.Fatalf("price round trip lost precision: got %s, want %s", items[0].Price, want)
	}
}

func TestPriceSession_OrderingAndTieBreak(t *testing.T) {
	session := beginSession(t)
	ctx := context.Background()
	clear(t, session)

	older := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	first, err := session.Insert(ctx, "btc", newer, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	// Same truncated-to-second timestamp: the later insert must sort first.
	second, err := session.Insert(ctx, "eth", newer, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := session.Insert(ctx, "sol", older, decimal.NewFromInt(3)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	items, total, err := session.ListPage(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 rows, got total=%d len=%d", total, len(items))
	}
	if items[0].ID != second.ID {
		t.Fatalf("tie-break: expected most recent insert first, got id=%d want id=%d", items[0].ID, second.ID)
	}
	if items[1].ID != first.ID {
		t.Fatalf("expected earlier insert second, got id=%d", items[1].ID)
	}
	if items[2].Currency != "sol" {
		t.Fatalf("expected oldest row last, got %q", items[2].Currency)
	}
}

func TestPriceSession_Pagination(t *testing.T) {
	session := beginSession(t)
	ctx := context.Background()
	clear(t, session)

	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		if _, err := session.Insert(ctx, "btc", ts, decimal.NewFromInt(int64(i))); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}

	items, total, err := session.ListPage(ctx, 2, 10)
	if err != nil {
		t.Fatalf("ListPage(2): %v", err)
	}
	if total != 25 {
		t.Fatalf("expected total=25, got %d", total)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items on page 2, got %d", len(items))
	}

	last, total, err := session.ListPage(ctx, 3, 10)
	if err != nil {
		t.Fatalf("ListPage(3): %v", err)
	}
	if total != 25 || len(last) != 5 {
		t.Fatalf("expected trailing page of 5, got total=%d len=%d", total, len(last))
	}

	empty, _, err := session.ListPage(ctx, 4, 10)
	if err != nil {
		t.Fatalf("ListPage(4): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page past the end, got %d items", len(empty))
	}
}

func TestPriceSession_HugePageIsEmptyNotError(t *testing.T) {
	session := beginSession(t)
	ctx := context.Background()
	clear(t, session)

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if _, err := session.Insert(ctx, "btc", ts, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// An absurd page number from the query string must produce an empty
	// page, never a negative OFFSET from integer overflow.
	items, total, err := session.ListPage(ctx, math.MaxInt, 10)
	if err != nil {
		t.Fatalf("ListPage(MaxInt): %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(items))
	}
	if total != 1 {
		t.Fatalf("expected total=1, got %d", total)
	}
}

func TestPriceSession_DeleteAll(t *testing.T) {
	session := beginSession(t)
	ctx := context.Background()
	clear(t, session)

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		currency := fmt.Sprintf("c%d", i)
		if _, err := session.Insert(ctx, currency, ts, decimal.NewFromInt(int64(i))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	deleted, err := session.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	// Idempotent: deleting an empty table reports zero.
	again, err := session.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll (empty): %v", err)
	}
	if again != 0 {
		t.Fatalf("expected 0 on empty table, got %d", again)
	}

	_, total, err := session.ListPage(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected empty table, total=%d", total)
	}
}

func TestPriceSession_RollbackDiscardsInsert(t *testing.T) {
	pool := testutil.SetupPool(t)
	store := repository.NewPriceStore(pool)
	ctx := context.Background()

	session, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	rec, err := session.Insert(ctx, "xrp", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := session.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	check, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin (check): %v", err)
	}
	defer check.Rollback(ctx)

	items, _, err := check.ListPage(ctx, 1, 1000)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	for _, it := range items {
		if it.ID == rec.ID {
			t.Fatal("rolled-back insert is still visible")
		}
	}
}
