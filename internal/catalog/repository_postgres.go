package catalog

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, name, description, price_cents, stock, active, image_url, image_urls`

func (r *PostgresRepository) ListProducts() ([]Product, error) {
	rows, err := r.db.Query(`SELECT ` + productColumns + ` FROM products WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresRepository) GetProduct(id int) (Product, error) {
	var p Product
	err := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Active, &p.ImageURL, pq.Array(&p.ImageURLs))
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListProductsByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.Query(`SELECT `+productColumns+` FROM products
        WHERE id = ANY($1::int[])
        ORDER BY array_position($1::int[], id)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresRepository) GetShippingMethod(id int) (ShippingMethod, error) {
	var m ShippingMethod
	err := r.db.QueryRow(`SELECT id, name, price_cents, active FROM shipping_methods WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.PriceCents, &m.Active)
	if err == sql.ErrNoRows {
		return ShippingMethod{}, ErrShippingMethodNotFound
	}
	if err != nil {
		return ShippingMethod{}, err
	}
	return m, nil
}

func (r *PostgresRepository) ListShippingMethods() ([]ShippingMethod, error) {
	rows, err := r.db.Query(`SELECT id, name, price_cents, active FROM shipping_methods WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ShippingMethod, 0)
	for rows.Next() {
		var m ShippingMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.PriceCents, &m.Active); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Active, &p.ImageURL, pq.Array(&p.ImageURLs)); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
