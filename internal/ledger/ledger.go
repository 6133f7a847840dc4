package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound occurs when the referenced account number does not exist.
	ErrAccountNotFound = errors.New("account number not recognised")

	// ErrSenderNotFound occurs when the sending side of a transfer does not exist.
	ErrSenderNotFound = errors.New("sender account number not recognised")

	// ErrReceiverNotFound occurs when the receiving side of a transfer does not exist.
	ErrReceiverNotFound = errors.New("receiver account number not recognised")

	// ErrInvalidAmount occurs when an operation is requested with a zero or
	// negative amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientFunds occurs when the account balance does not cover a
	// withdrawal or transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount occurs when a transfer names the same account on both sides.
	ErrSameAccount = errors.New("sender and receiver are the same account")
)

// StorageError wraps an unexpected failure of the underlying store. The
// triggering operation has been rolled back when this is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageFail(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Kind classifies a movement. There are exactly two variants.
type Kind string

const (
	// KindCredit marks a movement that increased the balance.
	KindCredit Kind = "credit"
	// KindDebit marks a movement that decreased the balance.
	KindDebit Kind = "debit"
)

// Valid reports whether k is one of the two movement kinds.
func (k Kind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

// Movement is one immutable ledger entry. Balance holds the account balance
// after the movement was applied, not the delta.
type Movement struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"account_number"`
	Kind          Kind            `json:"kind"`
	Balance       decimal.Decimal `json:"balance"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferResult carries both post-transfer balances.
type TransferResult struct {
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

// Movement descriptions written by the store implementations.
const (
	descDeposit    = "deposit"
	descWithdrawal = "withdrawal"
)

// Store is the contract implemented by ledger backends. Every mutating
// operation applies its balance update(s) and movement append(s) as one
// atomic unit; on failure nothing is persisted.
type Store interface {
	// EnsureAccount confirms the account is known to the ledger. The
	// in-memory store creates it; the Postgres store verifies the registry
	// row exists.
	EnsureAccount(ctx context.Context, number string) error
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (TransferResult, error)
	Balance(ctx context.Context, number string) (decimal.Decimal, error)
	Movements(ctx context.Context, number string) ([]Movement, error)
}
