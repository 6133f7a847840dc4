package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists balances and movements in PostgreSQL. It reads the
// same accounts table the registry writes, taking row locks for the duration
// of every read-modify-write so concurrent operations on one account
// serialize instead of losing updates.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureAccount verifies the registry owns a row for the account number.
func (s *PostgresStore) EnsureAccount(ctx context.Context, number string) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE number = $1)`, number).Scan(&exists); err != nil {
		return storageFail("ensure account", err)
	}
	if !exists {
		return ErrAccountNotFound
	}
	return nil
}

// Deposit credits the account and appends the matching movement atomically.
func (s *PostgresStore) Deposit(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, storageFail("deposit", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockBalance(ctx, tx, number)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, storageFail("deposit", err)
	}

	newBalance := balance.Add(amount)
	if err := writeBalance(ctx, tx, number, newBalance); err != nil {
		return decimal.Zero, storageFail("deposit", err)
	}
	if err := appendMovement(ctx, tx, number, KindCredit, newBalance, descDeposit); err != nil {
		return decimal.Zero, storageFail("deposit", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, storageFail("deposit", err)
	}
	return newBalance, nil
}

// Withdraw debits the account if the balance covers the amount.
func (s *PostgresStore) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, storageFail("withdraw", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockBalance(ctx, tx, number)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, storageFail("withdraw", err)
	}
	if balance.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}

	newBalance := balance.Sub(amount)
	if err := writeBalance(ctx, tx, number, newBalance); err != nil {
		return decimal.Zero, storageFail("withdraw", err)
	}
	if err := appendMovement(ctx, tx, number, KindDebit, newBalance, descWithdrawal); err != nil {
		return decimal.Zero, storageFail("withdraw", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, storageFail("withdraw", err)
	}
	return newBalance, nil
}

// Transfer moves the amount between two accounts, writing both balances and
// both mirrored movements in one transaction. Rows are locked in number
// order so two opposite transfers cannot deadlock.
func (s *PostgresStore) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}
	if from == to {
		return TransferResult{}, ErrSameAccount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	rows, err := tx.Query(ctx, `SELECT number, balance FROM accounts WHERE number = ANY($1) ORDER BY number FOR UPDATE`,
		[]string{from, to})
	if err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}
	balances := make(map[string]decimal.Decimal, 2)
	for rows.Next() {
		var (
			number  string
			balance string
		)
		if err := rows.Scan(&number, &balance); err != nil {
			rows.Close()
			return TransferResult{}, storageFail("transfer", err)
		}
		dec, err := decimal.NewFromString(balance)
		if err != nil {
			rows.Close()
			return TransferResult{}, storageFail("transfer", err)
		}
		balances[number] = dec
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}

	senderBalance, ok := balances[from]
	if !ok {
		return TransferResult{}, ErrSenderNotFound
	}
	receiverBalance, ok := balances[to]
	if !ok {
		return TransferResult{}, ErrReceiverNotFound
	}
	if senderBalance.LessThan(amount) {
		return TransferResult{}, ErrInsufficientFunds
	}

	senderBalance = senderBalance.Sub(amount)
	receiverBalance = receiverBalance.Add(amount)

	if err := writeBalance(ctx, tx, from, senderBalance); err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}
	if err := writeBalance(ctx, tx, to, receiverBalance); err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}
	if err := appendMovement(ctx, tx, from, KindDebit, senderBalance, fmt.Sprintf("transfer to %s", to)); err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}
	if err := appendMovement(ctx, tx, to, KindCredit, receiverBalance, fmt.Sprintf("transfer from %s", from)); err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, storageFail("transfer", err)
	}
	return TransferResult{SenderBalance: senderBalance, ReceiverBalance: receiverBalance}, nil
}

// Balance returns the current balance for the account number.
func (s *PostgresStore) Balance(ctx context.Context, number string) (decimal.Decimal, error) {
	var balance string
	err := s.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE number = $1`, number).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, storageFail("balance", err)
	}
	dec, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Zero, storageFail("balance", err)
	}
	return dec, nil
}

// Movements returns the account's movement history in chronological order.
// An existing account with no history yields an empty slice, not an error;
// an unknown account number is an error.
func (s *PostgresStore) Movements(ctx context.Context, number string) ([]Movement, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE number = $1)`, number).Scan(&exists); err != nil {
		return nil, storageFail("movements", err)
	}
	if !exists {
		return nil, ErrAccountNotFound
	}

	rows, err := s.db.Query(ctx, `SELECT id, account_number, kind, balance, description, created_at
        FROM movements WHERE account_number = $1 ORDER BY id`, number)
	if err != nil {
		return nil, storageFail("movements", err)
	}
	defer rows.Close()

	movements := []Movement{}
	for rows.Next() {
		var (
			m       Movement
			kind    string
			balance string
		)
		if err := rows.Scan(&m.ID, &m.AccountNumber, &kind, &balance, &m.Description, &m.CreatedAt); err != nil {
			return nil, storageFail("movements", err)
		}
		m.Kind = Kind(kind)
		if m.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, storageFail("movements", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFail("movements", err)
	}
	return movements, nil
}

func lockBalance(ctx context.Context, tx pgx.Tx, number string) (decimal.Decimal, error) {
	var balance string
	if err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE number = $1 FOR UPDATE`, number).Scan(&balance); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(balance)
}

func writeBalance(ctx context.Context, tx pgx.Tx, number string, balance decimal.Decimal) error {
	_, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1::numeric WHERE number = $2`, balance.String(), number)
	return err
}

func appendMovement(ctx context.Context, tx pgx.Tx, number string, kind Kind, balance decimal.Decimal, description string) error {
	_, err := tx.Exec(ctx, `INSERT INTO movements (account_number, kind, balance, description)
        VALUES ($1, $2, $3::numeric, $4)`, number, string(kind), balance.String(), description)
	return err
}
