package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"ordergw/internal/apperr"
	"ordergw/internal/model"
	"ordergw/internal/store"
)

func newTestFactory(t *testing.T) store.Factory {
	t.Helper()

	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(SQLiteSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return New(db).Factory()
}

func mustUoW(t *testing.T, factory store.Factory) store.UnitOfWork {
	t.Helper()
	uow, err := factory(context.Background())
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	return uow
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLCommitPersistsRollbackDiscards(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	// rollback discards the write
	uow := mustUoW(t, factory)
	if err := uow.Customers().Save(ctx, model.Customer{CustID: "C_1", Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	uow = mustUoW(t, factory)
	if ok, _ := uow.Customers().ExistsEmail(ctx, "a@example.com"); ok {
		t.Fatal("rolled-back write is visible")
	}
	_ = uow.Rollback()

	// commit persists it
	uow = mustUoW(t, factory)
	if err := uow.Customers().Save(ctx, model.Customer{CustID: "C_1", Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow = mustUoW(t, factory)
	got, err := uow.Customers().ByID(ctx, "C_1")
	if err != nil || got == nil {
		t.Fatalf("ByID after commit: %v, %v", got, err)
	}
	if got.Email != "a@example.com" {
		t.Fatalf("email = %q", got.Email)
	}
	_ = uow.Rollback()
}

func TestSQLDuplicateEmailSurfacesAsConflict(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	uow := mustUoW(t, factory)
	if err := uow.Customers().Save(ctx, model.Customer{CustID: "C_1", Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow = mustUoW(t, factory)
	err := uow.Customers().Save(ctx, model.Customer{CustID: "C_2", Name: "B", Email: "A@EXAMPLE.COM"})
	if !errors.Is(err, apperr.Conflict(apperr.CodeEmailDup, "")) {
		t.Fatalf("duplicate save = %v, want EMAIL_DUP", err)
	}
	_ = uow.Rollback()
}

func TestSQLDuplicateProductNameSurfacesAsConflict(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	uow := mustUoW(t, factory)
	if err := uow.Products().Save(ctx, model.Product{ProdID: "P_1", Name: "Pen", NameNorm: "pen", UnitPrice: 100}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow = mustUoW(t, factory)
	err := uow.Products().Save(ctx, model.Product{ProdID: "P_2", Name: "PEN", NameNorm: "pen", UnitPrice: 50})
	if !errors.Is(err, apperr.Conflict(apperr.CodeNameDup, "")) {
		t.Fatalf("duplicate save = %v, want NAME_DUP", err)
	}
	_ = uow.Rollback()
}

func seedOrderFixtures(t *testing.T, factory store.Factory) {
	t.Helper()
	ctx := context.Background()

	uow := mustUoW(t, factory)
	if err := uow.Customers().Save(ctx, model.Customer{CustID: "C_1", Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := uow.Products().Save(ctx, model.Product{ProdID: "P_1", Name: "Pen", NameNorm: "pen", UnitPrice: 100}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("seed commit: %v", err)
	}
}

func TestSQLOrderRoundTrip(t *testing.T) {
	factory := newTestFactory(t)
	seedOrderFixtures(t, factory)
	ctx := context.Background()

	o := model.Order{
		OrderID:     "O_1",
		CustID:      "C_1",
		OrderDate:   date(2025, 6, 1),
		TotalAmount: 300,
		Items: []model.OrderLine{
			{OrderID: "O_1", LineNo: 1, ProdID: "P_1", Qty: 3, UnitPrice: 100, LineAmount: 300},
		},
	}
	uow := mustUoW(t, factory)
	if err := uow.Orders().Save(ctx, o); err != nil {
		t.Fatalf("save order: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow = mustUoW(t, factory)
	got, err := uow.Orders().ByID(ctx, "O_1")
	if err != nil || got == nil {
		t.Fatalf("ByID: %v, %v", got, err)
	}
	if !got.OrderDate.Equal(date(2025, 6, 1)) {
		t.Fatalf("order date = %v", got.OrderDate)
	}
	if got.TotalAmount != 300 || len(got.Items) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Items[0].LineNo != 1 || got.Items[0].LineAmount != 300 {
		t.Fatalf("line mismatch: %+v", got.Items[0])
	}
	_ = uow.Rollback()
}

func TestSQLDuplicateOrderIDSurfacesAsIntegrityViolation(t *testing.T) {
	factory := newTestFactory(t)
	seedOrderFixtures(t, factory)
	ctx := context.Background()

	o := model.Order{OrderID: "O_1", CustID: "C_1", OrderDate: date(2025, 6, 1)}
	uow := mustUoW(t, factory)
	if err := uow.Orders().Save(ctx, o); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow = mustUoW(t, factory)
	err := uow.Orders().Save(ctx, o)
	if !errors.Is(err, apperr.Conflict(apperr.CodeDBIntegrity, "")) {
		t.Fatalf("duplicate order id save = %v, want DB_INTEGRITY", err)
	}
	_ = uow.Rollback()
}

func TestSQLSearchOrderingAndPagination(t *testing.T) {
	factory := newTestFactory(t)
	seedOrderFixtures(t, factory)
	ctx := context.Background()

	dates := []time.Time{
		date(2025, 6, 1), date(2025, 6, 3), date(2025, 6, 2), date(2025, 6, 4),
	}
	uow := mustUoW(t, factory)
	for i, d := range dates {
		o := model.Order{
			OrderID:     fmt.Sprintf("O_%d", i+1),
			CustID:      "C_1",
			OrderDate:   d,
			TotalAmount: int64((i + 1) * 100),
		}
		if err := uow.Orders().Save(ctx, o); err != nil {
			t.Fatalf("save order %d: %v", i, err)
		}
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	want := []string{"O_4", "O_2", "O_3", "O_1"}
	var paged []string
	for page := 0; page < 4; page++ {
		uow = mustUoW(t, factory)
		items, total, err := uow.Orders().Search(ctx, store.SearchQuery{
			CustID: "C_1", Page: page, Size: 1,
		})
		_ = uow.Rollback()
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if total != 4 {
			t.Fatalf("page %d: total = %d, want 4", page, total)
		}
		if len(items) != 1 {
			t.Fatalf("page %d: len = %d, want 1", page, len(items))
		}
		paged = append(paged, items[0].OrderID)
	}
	for i := range want {
		if paged[i] != want[i] {
			t.Fatalf("paged = %v, want %v", paged, want)
		}
	}

	// inclusive date range
	from := date(2025, 6, 2)
	to := date(2025, 6, 3)
	uow = mustUoW(t, factory)
	items, total, err := uow.Orders().Search(ctx, store.SearchQuery{
		CustID: "C_1", From: &from, To: &to, Page: 0, Size: 10,
	})
	_ = uow.Rollback()
	if err != nil {
		t.Fatalf("range search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("range search: total=%d len=%d, want 2, 2", total, len(items))
	}
}
