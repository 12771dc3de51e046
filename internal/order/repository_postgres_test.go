package order

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/westmarin/yacht-store-backend/internal/coupon"
)

func TestMarkPaid_DebitsStockOnTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(StatusProcessing, "pi_123", sqlmock.AnyArg(), 7, StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products p SET stock").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ok, err := repo.MarkPaid(7, "pi_123")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if !ok {
		t.Fatal("expected transition to fire")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkPaid_AlreadyProcessedSkipsDebit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// guard matches no row: no stock update, just commit
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(StatusProcessing, "pi_123", sqlmock.AnyArg(), 7, StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.MarkPaid(7, "pi_123")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if ok {
		t.Fatal("expected no transition for non-pending order")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(StatusCancelled, sqlmock.AnyArg(), "pi_123", StatusPending, StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkFailed("pi_123")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if !ok {
		t.Fatal("expected a matching order")
	}

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(StatusCancelled, sqlmock.AnyArg(), "pi_unknown", StatusPending, StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.MarkFailed("pi_unknown")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if ok {
		t.Fatal("expected no match for unknown reference")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkFailed_ExcludesEmptyReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// rows whose reference was never bridged hold '' and must not be swept
	// up, so the predicate excludes the empty string explicitly
	mock.ExpectExec(`provider_payment_ref <> ''`).
		WithArgs(StatusCancelled, sqlmock.AnyArg(), "", StatusPending, StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkFailed("")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if ok {
		t.Fatal("expected no match for empty reference")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreate_ExhaustedCouponRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	couponID := 4
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE coupons SET usage_count").
		WithArgs(couponID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = repo.Create(Order{Number: "WM-20260829-AB12CD", OwnerKey: "account:1", CouponID: &couponID}, nil)
	if !errors.Is(err, coupon.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err = repo.Create(Order{Number: "WM-20260829-AB12CD", OwnerKey: "account:1"}, nil)
	if !errors.Is(err, ErrNumberTaken) {
		t.Fatalf("expected ErrNumberTaken, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
