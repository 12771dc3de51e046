package cart

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Lines(ownerKey string) ([]Line, error) {
	rows, err := r.db.Query(`SELECT id, owner_key, product_id, quantity
        FROM cart_lines WHERE owner_key = $1 ORDER BY id`, ownerKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OwnerKey, &l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetLine(lineID int) (Line, error) {
	var l Line
	err := r.db.QueryRow(`SELECT id, owner_key, product_id, quantity FROM cart_lines WHERE id = $1`, lineID).
		Scan(&l.ID, &l.OwnerKey, &l.ProductID, &l.Quantity)
	if err == sql.ErrNoRows {
		return Line{}, ErrLineNotFound
	}
	if err != nil {
		return Line{}, err
	}
	return l, nil
}

func (r *PostgresRepository) FindLine(ownerKey string, productID int) (Line, error) {
	var l Line
	err := r.db.QueryRow(`SELECT id, owner_key, product_id, quantity
        FROM cart_lines WHERE owner_key = $1 AND product_id = $2`, ownerKey, productID).
		Scan(&l.ID, &l.OwnerKey, &l.ProductID, &l.Quantity)
	if err == sql.ErrNoRows {
		return Line{}, ErrLineNotFound
	}
	if err != nil {
		return Line{}, err
	}
	return l, nil
}

func (r *PostgresRepository) Insert(line Line) (Line, error) {
	err := r.db.QueryRow(`INSERT INTO cart_lines (owner_key, product_id, quantity)
        VALUES ($1,$2,$3) RETURNING id`, line.OwnerKey, line.ProductID, line.Quantity).Scan(&line.ID)
	if err != nil {
		return Line{}, err
	}
	return line, nil
}

func (r *PostgresRepository) UpdateQuantity(lineID, qty int) error {
	res, err := r.db.Exec(`UPDATE cart_lines SET quantity = $1 WHERE id = $2`, qty, lineID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(lineID int) error {
	res, err := r.db.Exec(`DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(ownerKey string) error {
	_, err := r.db.Exec(`DELETE FROM cart_lines WHERE owner_key = $1`, ownerKey)
	return err
}
