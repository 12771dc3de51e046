package order

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/westmarin/yacht-store-backend/internal/coupon"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `id, order_number, owner_key, account_id, guest_email, status,
    subtotal_cents, shipping_cents, discount_cents, total_cents, coupon_id, shipping_method_id,
    ship_name, ship_street, ship_city, ship_state, ship_zip, ship_country, ship_phone,
    notes, provider_payment_ref, tracking_number, created_at, updated_at`

// Create inserts the order, its snapshot lines, the coupon usage reservation
// and the cart cleanup in one transaction. A failure at any step leaves
// nothing behind.
func (r *PostgresRepository) Create(ord Order, lines []Line) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	if ord.CouponID != nil {
		res, err := tx.Exec(`UPDATE coupons SET usage_count = usage_count + 1
            WHERE id = $1 AND (usage_limit = 0 OR usage_count < usage_limit)`, *ord.CouponID)
		if err != nil {
			return Order{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Order{}, coupon.ErrExhausted
		}
	}

	err = tx.QueryRow(`INSERT INTO orders (order_number, owner_key, account_id, guest_email, status,
            subtotal_cents, shipping_cents, discount_cents, total_cents, coupon_id, shipping_method_id,
            ship_name, ship_street, ship_city, ship_state, ship_zip, ship_country, ship_phone,
            notes, provider_payment_ref, tracking_number, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
        RETURNING id`,
		ord.Number, ord.OwnerKey, ord.AccountID, ord.GuestEmail, ord.Status,
		ord.SubtotalCents, ord.ShippingCents, ord.DiscountCents, ord.TotalCents, ord.CouponID, ord.ShippingMethodID,
		ord.Address.Name, ord.Address.Street, ord.Address.City, ord.Address.State, ord.Address.Zip, ord.Address.Country, ord.Address.Phone,
		ord.Notes, ord.ProviderPaymentRef, ord.TrackingNumber, ord.CreatedAt, ord.UpdatedAt).Scan(&ord.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Order{}, ErrNumberTaken
		}
		return Order{}, err
	}

	for i := range lines {
		lines[i].OrderID = ord.ID
		err := tx.QueryRow(`INSERT INTO order_lines (order_id, product_id, product_name, product_image, quantity, price_cents)
            VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
			lines[i].OrderID, lines[i].ProductID, lines[i].ProductName, lines[i].ProductImage,
			lines[i].Quantity, lines[i].PriceCents).Scan(&lines[i].ID)
		if err != nil {
			return Order{}, err
		}
	}

	if _, err := tx.Exec(`DELETE FROM cart_lines WHERE owner_key = $1`, ord.OwnerKey); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByNumber(number string) (Order, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number))
}

func (r *PostgresRepository) LinesByOrderID(orderID int) ([]Line, error) {
	rows, err := r.db.Query(`SELECT id, order_id, product_id, product_name, product_image, quantity, price_cents
        FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.ProductImage, &l.Quantity, &l.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListByOwner(ownerKey string) ([]Order, error) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders WHERE owner_key = $1 ORDER BY id DESC`, ownerKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SetPaymentRef(orderID int, ref string) error {
	res, err := r.db.Exec(`UPDATE orders SET provider_payment_ref = $1, updated_at = $2 WHERE id = $3`,
		ref, nowRFC3339(), orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid performs the guarded pending→processing transition and, only when
// the transition fired, debits stock for every order line, all in one
// transaction. Stock is floored at zero. Returns false when the order was
// already past pending, which is how duplicate webhook deliveries converge.
func (r *PostgresRepository) MarkPaid(orderID int, providerRef string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE orders SET status = $1, provider_payment_ref = $2, updated_at = $3
        WHERE id = $4 AND status = $5`,
		StatusProcessing, providerRef, nowRFC3339(), orderID, StatusPending)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, tx.Commit()
	}

	if _, err := tx.Exec(`UPDATE products p SET stock = GREATEST(p.stock - l.quantity, 0)
        FROM order_lines l
        WHERE l.order_id = $1 AND p.id = l.product_id`, orderID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// MarkFailed cancels the order holding the provider reference. The lookup is
// indexed; only the early states may transition to cancelled. Orders without
// a persisted reference hold the empty string, so an empty lookup must never
// match.
func (r *PostgresRepository) MarkFailed(providerRef string) (bool, error) {
	res, err := r.db.Exec(`UPDATE orders SET status = $1, updated_at = $2
        WHERE provider_payment_ref = $3 AND provider_payment_ref <> '' AND status IN ($4, $5)`,
		StatusCancelled, nowRFC3339(), providerRef, StatusPending, StatusProcessing)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *PostgresRepository) SetStatus(orderID int, status Status, trackingNumber string) error {
	var res sql.Result
	var err error
	if trackingNumber != "" {
		res, err = r.db.Exec(`UPDATE orders SET status = $1, tracking_number = $2, updated_at = $3 WHERE id = $4`,
			status, trackingNumber, nowRFC3339(), orderID)
	} else {
		res, err = r.db.Exec(`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
			status, nowRFC3339(), orderID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (Order, error) {
	ord, err := scanOrder(row.Scan)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return ord, nil
}

func scanOrder(scan func(dest ...any) error) (Order, error) {
	var ord Order
	err := scan(&ord.ID, &ord.Number, &ord.OwnerKey, &ord.AccountID, &ord.GuestEmail, &ord.Status,
		&ord.SubtotalCents, &ord.ShippingCents, &ord.DiscountCents, &ord.TotalCents, &ord.CouponID, &ord.ShippingMethodID,
		&ord.Address.Name, &ord.Address.Street, &ord.Address.City, &ord.Address.State, &ord.Address.Zip, &ord.Address.Country, &ord.Address.Phone,
		&ord.Notes, &ord.ProviderPaymentRef, &ord.TrackingNumber, &ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	return ord, nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
