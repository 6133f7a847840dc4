package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acct Account) (Account, error)
	FindByNumber(ctx context.Context, number string) (Account, error)
	FindByName(ctx context.Context, name string) (Account, error)
	IdentityInUse(ctx context.Context, nationalID, phone string) (bool, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

// Create inserts a new account and returns it with the storage-assigned id
// and creation timestamp filled in.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (national_id, name, email, phone, number, balance, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
        RETURNING id, created_at`,
		acct.NationalID, acct.Name, acct.Email, acct.Phone, acct.Number, acct.Balance.String(), acct.PasswordHash)

	var createdAt time.Time
	if err := row.Scan(&acct.ID, &createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "accounts_number_key" {
				return Account{}, errNumberTaken
			}
			return Account{}, ErrDuplicateIdentity
		}
		return Account{}, err
	}
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}

// FindByNumber fetches an account by its account number.
func (r *PostgresRepository) FindByNumber(ctx context.Context, number string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, national_id, name, email, phone, number, balance, password_hash, created_at
        FROM accounts WHERE number = $1`, number)
	return scanAccount(row)
}

// FindByName fetches the first account registered under the display name.
// Names are not unique; the lowest id wins.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, national_id, name, email, phone, number, balance, password_hash, created_at
        FROM accounts WHERE name = $1 ORDER BY id LIMIT 1`, name)
	return scanAccount(row)
}

// IdentityInUse reports whether an existing account already carries the
// national id or the phone number.
func (r *PostgresRepository) IdentityInUse(ctx context.Context, nationalID, phone string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE national_id = $1 OR phone = $2)`,
		nationalID, phone).Scan(&exists)
	return exists, err
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acct      Account
		balance   string
		createdAt time.Time
	)
	if err := row.Scan(&acct.ID, &acct.NationalID, &acct.Name, &acct.Email, &acct.Phone,
		&acct.Number, &balance, &acct.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return Account{}, err
	}
	acct.Balance = bal
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}
