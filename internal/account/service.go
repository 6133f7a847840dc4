package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// numberAttempts bounds how often Register retries a colliding account number.
const numberAttempts = 3

// Service manages the account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register opens an account with a zero balance, a generated account number
// and a bcrypt-hashed password. The national id and phone number must both
// be unused.
func (s *Service) Register(ctx context.Context, reg Registration) (Account, error) {
	if reg.NationalID == "" || reg.Name == "" || reg.Email == "" || reg.Phone == "" {
		return Account{}, errors.New("all identity fields are required")
	}
	if len(reg.Password) < 6 {
		return Account{}, errors.New("password must be at least 6 characters")
	}

	inUse, err := s.repo.IdentityInUse(ctx, reg.NationalID, reg.Phone)
	if err != nil {
		return Account{}, fmt.Errorf("check identity: %w", err)
	}
	if inUse {
		return Account{}, ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	acct := Account{
		NationalID:   reg.NationalID,
		Name:         reg.Name,
		Email:        reg.Email,
		Phone:        reg.Phone,
		Balance:      decimal.Zero,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		acct.Number = GenerateNumber()
		created, err := s.repo.Create(ctx, acct)
		if errors.Is(err, errNumberTaken) {
			continue
		}
		if err != nil {
			return Account{}, err
		}
		return created, nil
	}
	return Account{}, fmt.Errorf("could not allocate a unique account number after %d attempts", numberAttempts)
}

// FindByNumber returns the account registered under the account number.
func (s *Service) FindByNumber(ctx context.Context, number string) (Account, error) {
	return s.repo.FindByNumber(ctx, number)
}

// FindByName returns the first account registered under the display name.
func (s *Service) FindByName(ctx context.Context, name string) (Account, error) {
	return s.repo.FindByName(ctx, name)
}

// Authenticate verifies the login credentials and returns the matching
// account. An unknown name yields ErrNotFound, a wrong password
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, login Login) (Account, error) {
	acct, err := s.repo.FindByName(ctx, login.Name)
	if err != nil {
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(login.Password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}
