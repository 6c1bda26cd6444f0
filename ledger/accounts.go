package ledger

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// AccountStore exclusively owns every account, keyed by client id. Accounts
// are created on first reference and never removed for the duration of a run.
//
// The map itself is guarded because lanes for new clients are created
// concurrently; the fields of an individual Account are mutated only by the
// lane owning that client, so lane ordering is the only synchronization the
// balances need.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[uint16]*Account
}

// NewAccountStore returns an empty account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[uint16]*Account)}
}

// GetOrCreate returns the account for clientID, creating a zero-balance
// unlocked account on first reference. Idempotent.
func (s *AccountStore) GetOrCreate(clientID uint16) *Account {
	s.mu.RLock()
	acct, ok := s.accounts[clientID]
	s.mu.RUnlock()
	if ok {
		return acct
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.accounts[clientID]; ok {
		return acct
	}
	acct = &Account{
		ClientID:  clientID,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
	s.accounts[clientID] = acct
	return acct
}

// Views returns a snapshot row per account, ordered by client id ascending.
// Callers must ensure all lanes are drained first; Views does not freeze
// in-flight mutations.
func (s *AccountStore) Views() []AccountView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AccountView, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, AccountView{
			ClientID:  acct.ClientID,
			Available: acct.Available,
			Held:      acct.Held,
			Total:     acct.Total(),
			Locked:    acct.Locked,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// CreditAvailable adds amount to the available balance.
func (a *Account) CreditAvailable(amount decimal.Decimal) error {
	if a.Locked {
		return ErrAccountLocked
	}
	a.Available = a.Available.Add(amount)
	return nil
}

// DebitAvailable subtracts amount from the available balance. The account is
// left unchanged when funds are insufficient; there is no partial debit.
func (a *Account) DebitAvailable(amount decimal.Decimal) error {
	if a.Locked {
		return ErrAccountLocked
	}
	if a.Available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Available = a.Available.Sub(amount)
	return nil
}

// HoldFromAvailable moves amount from available into held.
func (a *Account) HoldFromAvailable(amount decimal.Decimal) error {
	if a.Locked {
		return ErrAccountLocked
	}
	if a.Available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
	return nil
}

// ReleaseHeldToAvailable moves amount from held back into available.
func (a *Account) ReleaseHeldToAvailable(amount decimal.Decimal) error {
	if a.Locked {
		return ErrAccountLocked
	}
	if a.Held.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Held = a.Held.Sub(amount)
	a.Available = a.Available.Add(amount)
	return nil
}

// RemoveHeld withdraws amount from the held pool entirely.
func (a *Account) RemoveHeld(amount decimal.Decimal) error {
	if a.Locked {
		return ErrAccountLocked
	}
	if a.Held.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Held = a.Held.Sub(amount)
	return nil
}

// Lock freezes the account. Every later mutation fails with ErrAccountLocked.
func (a *Account) Lock() {
	a.Locked = true
}
