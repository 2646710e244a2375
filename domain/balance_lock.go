package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LockStatus is the lifecycle state of a balance lock.
type LockStatus string

const (
	LockStatusLocked   LockStatus = "LOCKED"
	LockStatusReleased LockStatus = "RELEASED"
)

func (s LockStatus) Valid() bool {
	return s == LockStatusLocked || s == LockStatusReleased
}

// BalanceLock freezes the full available balance of a set of accounts under a
// single lock id. RELEASE returns the snapshot amounts to their accounts and
// flips the same record to RELEASED.
type BalanceLock struct {
	LockID         string                     `json:"lock_id"`
	AccountKeys    []string                   `json:"account_keys"`
	LockedBalances map[string]decimal.Decimal `json:"locked_balances"`
	Identifier     string                     `json:"identifier"`
	Status         LockStatus                 `json:"status"`
	CreatedAt      int64                      `json:"created_at"`
	UpdatedAt      int64                      `json:"updated_at"`
}

func NewBalanceLock(lockID string) *BalanceLock {
	return &BalanceLock{
		LockID:         lockID,
		LockedBalances: make(map[string]decimal.Decimal),
		Status:         LockStatusLocked,
	}
}

func (l *BalanceLock) Key() string { return l.LockID }

func (l *BalanceLock) Clone() *BalanceLock {
	if l == nil {
		return nil
	}
	clone := *l
	clone.AccountKeys = append([]string(nil), l.AccountKeys...)
	clone.LockedBalances = make(map[string]decimal.Decimal, len(l.LockedBalances))
	for k, v := range l.LockedBalances {
		clone.LockedBalances[k] = v
	}
	return &clone
}

// Validate checks the lock's structural invariants.
func (l *BalanceLock) Validate() error {
	if l.LockID == "" {
		return fmt.Errorf("balance lock: lock id is required")
	}
	if len(l.AccountKeys) == 0 {
		return fmt.Errorf("balance lock %s: AccountKeys list is required", l.LockID)
	}
	for _, key := range l.AccountKeys {
		if key == "" {
			return fmt.Errorf("balance lock %s: account keys must not be blank", l.LockID)
		}
	}
	if !l.Status.Valid() {
		return fmt.Errorf("balance lock %s: invalid status %q", l.LockID, l.Status)
	}
	return nil
}
