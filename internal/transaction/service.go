package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arta-bank/arta_bank/internal/ledger"
	"github.com/arta-bank/arta_bank/internal/notification"
)

// Service drives the balance-mutating operations against the ledger store
// and validates inputs before anything touches storage.
type Service struct {
	store    ledger.Store
	notifier notification.Notifier
}

// NewService constructs a transaction service.
func NewService(store ledger.Store, notifier notification.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// DepositInput captures a credit into one account.
type DepositInput struct {
	AccountNumber string
	Amount        decimal.Decimal
}

// WithdrawInput captures a debit from one account.
type WithdrawInput struct {
	AccountNumber string
	Amount        decimal.Decimal
}

// TransferInput captures a movement of funds between two accounts.
type TransferInput struct {
	FromNumber string
	ToNumber   string
	Amount     decimal.Decimal
}

// TransferOutcome describes the result of a completed transfer.
type TransferOutcome struct {
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
	CompletedAt     time.Time
}

// Deposit credits the account and returns the new balance.
func (s *Service) Deposit(ctx context.Context, input DepositInput) (decimal.Decimal, error) {
	if !input.Amount.IsPositive() {
		return decimal.Zero, ledger.ErrInvalidAmount
	}
	return s.store.Deposit(ctx, input.AccountNumber, input.Amount)
}

// Withdraw debits the account and returns the new balance.
func (s *Service) Withdraw(ctx context.Context, input WithdrawInput) (decimal.Decimal, error) {
	if !input.Amount.IsPositive() {
		return decimal.Zero, ledger.ErrInvalidAmount
	}
	return s.store.Withdraw(ctx, input.AccountNumber, input.Amount)
}

// Transfer moves funds between two distinct accounts and notifies the receiver.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferOutcome, error) {
	if !input.Amount.IsPositive() {
		return TransferOutcome{}, ledger.ErrInvalidAmount
	}
	if input.FromNumber == input.ToNumber {
		return TransferOutcome{}, ledger.ErrSameAccount
	}

	res, err := s.store.Transfer(ctx, input.FromNumber, input.ToNumber, input.Amount)
	if err != nil {
		return TransferOutcome{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:          notification.KindTransferReceived,
			AccountNumber: input.ToNumber,
			Body:          fmt.Sprintf("You received %s from account %s", input.Amount.String(), input.FromNumber),
		})
	}

	return TransferOutcome{
		SenderBalance:   res.SenderBalance,
		ReceiverBalance: res.ReceiverBalance,
		CompletedAt:     time.Now().UTC(),
	}, nil
}

// Balance returns the current balance of the account.
func (s *Service) Balance(ctx context.Context, number string) (decimal.Decimal, error) {
	return s.store.Balance(ctx, number)
}

// Movements returns the account's movement history; an empty history is a
// valid result, not an error.
func (s *Service) Movements(ctx context.Context, number string) ([]ledger.Movement, error) {
	return s.store.Movements(ctx, number)
}
