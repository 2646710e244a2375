package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TxStatus is the lifecycle state of a coin deposit or withdrawal.
type TxStatus string

const (
	TxStatusPending    TxStatus = "pending"
	TxStatusProcessing TxStatus = "processing"
	TxStatusReleasing  TxStatus = "releasing"
	TxStatusCompleted  TxStatus = "completed"
	TxStatusFailed     TxStatus = "failed"
	TxStatusCancelled  TxStatus = "cancelled"
)

// Valid reports whether the status value is supported.
func (s TxStatus) Valid() bool {
	switch s {
	case TxStatusPending, TxStatusProcessing, TxStatusReleasing,
		TxStatusCompleted, TxStatusFailed, TxStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed.
func (s TxStatus) Terminal() bool {
	switch s {
	case TxStatusCompleted, TxStatusFailed, TxStatusCancelled:
		return true
	default:
		return false
	}
}

// CoinDeposit is an inbound on-chain transfer credited to an account once
// verified.
type CoinDeposit struct {
	ID         string          `json:"id"`
	AccountKey string          `json:"account_key"`
	Coin       string          `json:"coin"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	TxHash     string          `json:"tx_hash"`
	Address    string          `json:"address"`
	ChainLayer string          `json:"chain_layer"`
	Status     TxStatus        `json:"status"`
	CreatedAt  int64           `json:"created_at"`
	UpdatedAt  int64           `json:"updated_at"`
}

func NewCoinDeposit(id string) *CoinDeposit {
	return &CoinDeposit{ID: id, Status: TxStatusPending}
}

func (d *CoinDeposit) Key() string { return d.ID }

func (d *CoinDeposit) Clone() *CoinDeposit {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}

// CreditedAmount is the amount actually credited to the account: amount minus
// the deposit fee.
func (d *CoinDeposit) CreditedAmount() decimal.Decimal {
	return d.Amount.Sub(d.Fee)
}

// Validate checks the deposit's numeric invariants.
func (d *CoinDeposit) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("coin deposit: identifier is required")
	}
	if d.AccountKey == "" {
		return fmt.Errorf("coin deposit %s: account key is required", d.ID)
	}
	if !d.Amount.IsPositive() {
		return fmt.Errorf("coin deposit %s: amount must be positive", d.ID)
	}
	if d.Fee.IsNegative() {
		return fmt.Errorf("coin deposit %s: fee must not be negative", d.ID)
	}
	if d.Fee.GreaterThanOrEqual(d.Amount) {
		return fmt.Errorf("coin deposit %s: fee must be less than amount", d.ID)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("coin deposit %s: invalid status %q", d.ID, d.Status)
	}
	return nil
}

// CoinWithdrawal is an outbound transfer. Its amount plus fee stays frozen on
// the owning account until the withdrawal completes or is rolled back.
type CoinWithdrawal struct {
	ID         string          `json:"id"`
	AccountKey string          `json:"account_key"`
	Coin       string          `json:"coin"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	Address    string          `json:"address"`
	ChainLayer string          `json:"chain_layer"`
	Status     TxStatus        `json:"status"`
	CreatedAt  int64           `json:"created_at"`
	UpdatedAt  int64           `json:"updated_at"`
}

func NewCoinWithdrawal(id string) *CoinWithdrawal {
	return &CoinWithdrawal{ID: id, Status: TxStatusPending}
}

func (w *CoinWithdrawal) Key() string { return w.ID }

func (w *CoinWithdrawal) Clone() *CoinWithdrawal {
	if w == nil {
		return nil
	}
	clone := *w
	return &clone
}

// FrozenAmount is the total held on the account while the withdrawal is in
// flight: amount plus fee.
func (w *CoinWithdrawal) FrozenAmount() decimal.Decimal {
	return w.Amount.Add(w.Fee)
}

// Validate checks the withdrawal's numeric invariants.
func (w *CoinWithdrawal) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("coin withdrawal: identifier is required")
	}
	if w.AccountKey == "" {
		return fmt.Errorf("coin withdrawal %s: account key is required", w.ID)
	}
	if w.Address == "" {
		return fmt.Errorf("coin withdrawal %s: address is required", w.ID)
	}
	if !w.Amount.IsPositive() {
		return fmt.Errorf("coin withdrawal %s: amount must be positive", w.ID)
	}
	if w.Fee.IsNegative() {
		return fmt.Errorf("coin withdrawal %s: fee must not be negative", w.ID)
	}
	if !w.Status.Valid() {
		return fmt.Errorf("coin withdrawal %s: invalid status %q", w.ID, w.Status)
	}
	return nil
}
