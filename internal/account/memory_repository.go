package account

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	accts  map[string]Account
}

// NewMemoryRepository builds an in-memory account store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{accts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acct Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accts[acct.Number]; exists {
		return Account{}, errNumberTaken
	}
	for _, existing := range r.accts {
		if existing.NationalID == acct.NationalID || existing.Phone == acct.Phone || existing.Email == acct.Email {
			return Account{}, ErrDuplicateIdentity
		}
	}
	r.nextID++
	acct.ID = r.nextID
	r.accts[acct.Number] = acct
	return acct, nil
}

func (r *memoryRepository) FindByNumber(_ context.Context, number string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accts[number]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (r *memoryRepository) FindByName(_ context.Context, name string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []Account
	for _, acct := range r.accts {
		if acct.Name == name {
			matches = append(matches, acct)
		}
	}
	if len(matches) == 0 {
		return Account{}, ErrNotFound
	}
	// first match means lowest id, mirroring the Postgres query
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches[0], nil
}

func (r *memoryRepository) IdentityInUse(_ context.Context, nationalID, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acct := range r.accts {
		if acct.NationalID == nationalID || acct.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}
