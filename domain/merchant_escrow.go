package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EscrowStatus is the lifecycle state of a merchant escrow.
type EscrowStatus string

const (
	EscrowStatusActive EscrowStatus = "active"
	EscrowStatusBurned EscrowStatus = "burned"
)

func (s EscrowStatus) Valid() bool {
	return s == EscrowStatusActive || s == EscrowStatusBurned
}

// MerchantEscrow freezes a crypto leg against minted fiat credit. MINT
// creates the escrow; BURN reverses both legs on the same record.
type MerchantEscrow struct {
	ID               string          `json:"id"`
	CryptoAccountKey string          `json:"usdt_account_key"`
	FiatAccountKey   string          `json:"fiat_account_key"`
	CryptoAmount     decimal.Decimal `json:"usdt_amount"`
	FiatAmount       decimal.Decimal `json:"fiat_amount"`
	FiatCurrency     string          `json:"fiat_currency"`
	Status           EscrowStatus    `json:"status"`
	CreatedAt        int64           `json:"created_at"`
	BurnedAt         int64           `json:"burned_at,omitempty"`
	UpdatedAt        int64           `json:"updated_at"`
}

func NewMerchantEscrow(id string) *MerchantEscrow {
	return &MerchantEscrow{ID: id, Status: EscrowStatusActive}
}

func (m *MerchantEscrow) Key() string { return m.ID }

func (m *MerchantEscrow) Clone() *MerchantEscrow {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

// Validate checks the escrow's structural and numeric invariants. Both legs
// must carry a strictly positive amount.
func (m *MerchantEscrow) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("merchant escrow: identifier is required")
	}
	if m.CryptoAccountKey == "" {
		return fmt.Errorf("merchant escrow %s: crypto account key is required", m.ID)
	}
	if m.FiatAccountKey == "" {
		return fmt.Errorf("merchant escrow %s: fiat account key is required", m.ID)
	}
	if !m.CryptoAmount.IsPositive() {
		return fmt.Errorf("merchant escrow %s: crypto amount must be positive", m.ID)
	}
	if !m.FiatAmount.IsPositive() {
		return fmt.Errorf("merchant escrow %s: fiat amount must be positive", m.ID)
	}
	if !m.Status.Valid() {
		return fmt.Errorf("merchant escrow %s: invalid status %q", m.ID, m.Status)
	}
	return nil
}
