package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a registered customer together with the balance the
// ledger mutates. The account number is the external identifier; the numeric
// id stays internal to storage.
type Account struct {
	ID           int64
	NationalID   string
	Name         string
	Email        string
	Phone        string
	Number       string
	Balance      decimal.Decimal
	PasswordHash []byte
	CreatedAt    time.Time
}

// Registration carries the data required to open an account.
type Registration struct {
	NationalID string
	Name       string
	Email      string
	Phone      string
	Password   string
}

// Login carries credentials presented at authentication time. Login is by
// display name, mirroring the deployed wire contract.
type Login struct {
	Name     string
	Password string
}
