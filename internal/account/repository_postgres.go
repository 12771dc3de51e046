package account

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, email, password_hash, first_name, last_name, role, created_at, updated_at`

func (r *PostgresRepository) GetByID(id int) (Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *PostgresRepository) GetByEmail(email string) (Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (r *PostgresRepository) Create(acc Account) (Account, error) {
	err := r.db.QueryRow(`INSERT INTO accounts (email, password_hash, first_name, last_name, role, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`,
		acc.Email, acc.Password, acc.FirstName, acc.LastName, acc.Role, acc.CreatedAt, acc.UpdatedAt).Scan(&acc.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrEmailExists
		}
		return Account{}, err
	}
	return acc, nil
}

func scanAccount(row *sql.Row) (Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.Email, &acc.Password, &acc.FirstName, &acc.LastName, &acc.Role, &acc.CreatedAt, &acc.UpdatedAt)
	if err == sql.ErrNoRows {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}
