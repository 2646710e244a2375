package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account tracks the available and frozen balance of one coin for one owner.
// Accounts are created on first use and never deleted.
type Account struct {
	AccountKey string          `json:"key"`
	Coin       string          `json:"coin"`
	Owner      string          `json:"owner"`
	Available  decimal.Decimal `json:"available_balance"`
	Frozen     decimal.Decimal `json:"frozen_balance"`
	UpdatedAt  int64           `json:"updated_at"`
}

// AccountKeyFor builds the composite coin+owner key under which an account is
// stored.
func AccountKeyFor(coin, owner string) string {
	return coin + ":" + owner
}

func NewAccount(key string) *Account {
	return &Account{AccountKey: key}
}

func (a *Account) Key() string { return a.AccountKey }

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// TotalBalance returns available + frozen.
func (a *Account) TotalBalance() decimal.Decimal {
	return a.Available.Add(a.Frozen)
}

// Credit increases the available balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("account %s: credit amount must be positive", a.AccountKey)
	}
	a.Available = a.Available.Add(amount)
	return nil
}

// Debit decreases the available balance, rejecting overdrafts.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("account %s: debit amount must be positive", a.AccountKey)
	}
	if a.Available.LessThan(amount) {
		return fmt.Errorf("account %s: insufficient available balance %s < %s", a.AccountKey, a.Available, amount)
	}
	a.Available = a.Available.Sub(amount)
	return nil
}

// Freeze moves amount from available into frozen.
func (a *Account) Freeze(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("account %s: freeze amount must be positive", a.AccountKey)
	}
	if a.Available.LessThan(amount) {
		return fmt.Errorf("account %s: insufficient available balance %s < %s", a.AccountKey, a.Available, amount)
	}
	a.Available = a.Available.Sub(amount)
	a.Frozen = a.Frozen.Add(amount)
	return nil
}

// Unfreeze moves amount from frozen back into available.
func (a *Account) Unfreeze(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("account %s: unfreeze amount must be positive", a.AccountKey)
	}
	if a.Frozen.LessThan(amount) {
		return fmt.Errorf("account %s: insufficient frozen balance %s < %s", a.AccountKey, a.Frozen, amount)
	}
	a.Frozen = a.Frozen.Sub(amount)
	a.Available = a.Available.Add(amount)
	return nil
}

// BurnFrozen removes amount from the frozen balance entirely, used when a
// withdrawal leaves the system.
func (a *Account) BurnFrozen(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("account %s: burn amount must be positive", a.AccountKey)
	}
	if a.Frozen.LessThan(amount) {
		return fmt.Errorf("account %s: insufficient frozen balance %s < %s", a.AccountKey, a.Frozen, amount)
	}
	a.Frozen = a.Frozen.Sub(amount)
	return nil
}
