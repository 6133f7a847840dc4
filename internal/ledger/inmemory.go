package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type inMemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	balances  map[string]decimal.Decimal
	movements map[string][]Movement
}

// NewInMemory creates a concurrency-safe in-memory ledger store used in
// development mode and unit tests.
func NewInMemory() Store {
	return &inMemoryStore{
		balances:  make(map[string]decimal.Decimal),
		movements: make(map[string][]Movement),
	}
}

func (s *inMemoryStore) EnsureAccount(_ context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.balances[number]; !exists {
		s.balances[number] = decimal.Zero
	}
	return nil
}

func (s *inMemoryStore) Deposit(_ context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[number]
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}

	newBalance := balance.Add(amount)
	s.balances[number] = newBalance
	s.append(number, KindCredit, newBalance, descDeposit)
	return newBalance, nil
}

func (s *inMemoryStore) Withdraw(_ context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[number]
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}
	if balance.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}

	newBalance := balance.Sub(amount)
	s.balances[number] = newBalance
	s.append(number, KindDebit, newBalance, descWithdrawal)
	return newBalance, nil
}

func (s *inMemoryStore) Transfer(_ context.Context, from, to string, amount decimal.Decimal) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}
	if from == to {
		return TransferResult{}, ErrSameAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	senderBalance, ok := s.balances[from]
	if !ok {
		return TransferResult{}, ErrSenderNotFound
	}
	receiverBalance, ok := s.balances[to]
	if !ok {
		return TransferResult{}, ErrReceiverNotFound
	}
	if senderBalance.LessThan(amount) {
		return TransferResult{}, ErrInsufficientFunds
	}

	senderBalance = senderBalance.Sub(amount)
	receiverBalance = receiverBalance.Add(amount)
	s.balances[from] = senderBalance
	s.balances[to] = receiverBalance

	s.append(from, KindDebit, senderBalance, fmt.Sprintf("transfer to %s", to))
	s.append(to, KindCredit, receiverBalance, fmt.Sprintf("transfer from %s", from))

	return TransferResult{SenderBalance: senderBalance, ReceiverBalance: receiverBalance}, nil
}

func (s *inMemoryStore) Balance(_ context.Context, number string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.balances[number]
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}
	return balance, nil
}

func (s *inMemoryStore) Movements(_ context.Context, number string) ([]Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.balances[number]; !ok {
		return nil, ErrAccountNotFound
	}
	history := s.movements[number]
	out := make([]Movement, len(history))
	copy(out, history)
	return out, nil
}

// append records a movement; the caller holds the write lock.
func (s *inMemoryStore) append(number string, kind Kind, balance decimal.Decimal, description string) {
	s.nextID++
	s.movements[number] = append(s.movements[number], Movement{
		ID:            s.nextID,
		AccountNumber: number,
		Kind:          kind,
		Balance:       balance,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	})
}
