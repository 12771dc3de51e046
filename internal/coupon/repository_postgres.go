package coupon

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByCode(code string) (Coupon, error) {
	var cp Coupon
	var expires sql.NullTime
	err := r.db.QueryRow(`SELECT id, code, type, value, min_order_cents, max_discount_cents,
            usage_limit, usage_count, expires_at, active
        FROM coupons WHERE code = $1`, NormalizeCode(code)).
		Scan(&cp.ID, &cp.Code, &cp.Type, &cp.Value, &cp.MinOrderCents, &cp.MaxDiscountCents,
			&cp.UsageLimit, &cp.UsageCount, &expires, &cp.Active)
	if err == sql.ErrNoRows {
		return Coupon{}, ErrNotFound
	}
	if err != nil {
		return Coupon{}, err
	}
	if expires.Valid {
		t := expires.Time
		cp.ExpiresAt = &t
	}
	return cp, nil
}
