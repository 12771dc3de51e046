package catalog

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "price_cents", "stock", "active", "image_url", "image_urls"})
}

func TestGetProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM products WHERE id").WithArgs(9).
		WillReturnRows(productRows().AddRow(9, "Mooring line 12mm", "Braided polyester", 4500, 30, true, "mooring.jpg", "{mooring.jpg,mooring-2.jpg}"))

	p, err := repo.GetProduct(9)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if p.ID != 9 || p.PriceCents != 4500 {
		t.Fatalf("unexpected product %+v", p)
	}
	if len(p.ImageURLs) != 2 {
		t.Fatalf("expected 2 image urls, got %v", p.ImageURLs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM products WHERE id").WithArgs(404).WillReturnRows(productRows())

	_, err = repo.GetProduct(404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListProductsByIDs_Empty(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// no query fires for an empty id set
	products, err := repo.ListProductsByIDs(nil)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty slice, got %v", products)
	}
}

func TestListShippingMethods(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "price_cents", "active"}).
		AddRow(1, "Marina pickup", 0, true).
		AddRow(2, "Standard dockside delivery", 1000, true)
	mock.ExpectQuery("FROM shipping_methods WHERE active").WillReturnRows(rows)

	methods, err := repo.ListShippingMethods()
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].PriceCents != 0 || methods[1].PriceCents != 1000 {
		t.Fatalf("unexpected prices %+v", methods)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
