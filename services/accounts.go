package services

import (
	"fmt"
	"sync"

	"EvergreenShareAPI/models"
)

// AccountSource is the storage behind the registry.
type AccountSource interface {
	GetAccount(id string) (*models.Account, error)
	GetActiveAccounts() ([]*models.Account, error)
}

// AccountRegistry resolves configured social accounts. Rows are cached for
// the life of the process; Refresh drops the cache so the next read hits
// storage again, which the queue uses when a provider may have rotated
// credentials out of band.
type AccountRegistry struct {
	source AccountSource

	mu    sync.Mutex
	cache map[string]*models.Account
}

func NewAccountRegistry(source AccountSource) *AccountRegistry {
	return &AccountRegistry{
		source: source,
		cache:  make(map[string]*models.Account),
	}
}

func (r *AccountRegistry) FindAccount(id string) (*models.Account, error) {
	r.mu.Lock()
	if account, ok := r.cache[id]; ok {
		r.mu.Unlock()
		return account, nil
	}
	r.mu.Unlock()

	account, err := r.source.GetAccount(id)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", id, err)
	}

	r.mu.Lock()
	r.cache[id] = account
	r.mu.Unlock()
	return account, nil
}

func (r *AccountRegistry) GetActiveAccounts() (map[string]*models.Account, error) {
	accounts, err := r.source.GetActiveAccounts()
	if err != nil {
		return nil, err
	}

	result := make(map[string]*models.Account, len(accounts))
	r.mu.Lock()
	for _, account := range accounts {
		r.cache[account.ID] = account
		result[account.ID] = account
	}
	r.mu.Unlock()
	return result, nil
}

// Refresh invalidates the cached account rows.
func (r *AccountRegistry) Refresh() {
	r.mu.Lock()
	r.cache = make(map[string]*models.Account)
	r.mu.Unlock()
}
