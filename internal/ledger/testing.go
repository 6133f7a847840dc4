package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets an account balance directly when
// using the in-memory store. No movement is recorded.
func SeedBalance(s Store, number string, balance decimal.Decimal) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[number] = balance
	}
}
