package event

import (
	"fmt"

	"github.com/shopspring/decimal"

	"exchcore/cache"
	"exchcore/domain"
)

// MerchantEscrowEvent drives the merchant escrow mint/burn pair.
type MerchantEscrowEvent struct {
	Base
	EscrowID         string          `json:"escrow_id"`
	CryptoAccountKey string          `json:"usdt_account_key"`
	FiatAccountKey   string          `json:"fiat_account_key"`
	CryptoAmount     decimal.Decimal `json:"usdt_amount"`
	FiatAmount       decimal.Decimal `json:"fiat_amount"`
	FiatCurrency     string          `json:"fiat_currency"`
}

func (e *MerchantEscrowEvent) Kind() Kind          { return KindMerchantEscrow }
func (e *MerchantEscrowEvent) ActionID() string    { return e.EscrowID }
func (e *MerchantEscrowEvent) ProducerKey() string { return e.EscrowID }

func (e *MerchantEscrowEvent) supported() bool {
	return e.Op == OpMerchantEscrowMint || e.Op == OpMerchantEscrowBurn
}

func (e *MerchantEscrowEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindMerchantEscrow, e.Op)
	}
	if err := requireFields(KindMerchantEscrow,
		requiredField{"escrow id", e.EscrowID},
	); err != nil {
		return err
	}
	if e.Op == OpMerchantEscrowMint {
		if err := requireFields(KindMerchantEscrow,
			requiredField{"crypto account key", e.CryptoAccountKey},
			requiredField{"fiat account key", e.FiatAccountKey},
			requiredField{"fiat currency", e.FiatCurrency},
		); err != nil {
			return err
		}
		if !e.CryptoAmount.IsPositive() {
			return fmt.Errorf("merchant_escrow event: crypto amount must be positive")
		}
		if !e.FiatAmount.IsPositive() {
			return fmt.Errorf("merchant_escrow event: fiat amount must be positive")
		}
	}
	exists, err := reg.MerchantEscrows.Exists(e.EscrowID)
	if err != nil {
		return err
	}
	if e.Op == OpMerchantEscrowMint {
		if exists {
			return fmt.Errorf("merchant escrow %s already exists", e.EscrowID)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("merchant escrow not found: %s", e.EscrowID)
	}
	return nil
}

func (e *MerchantEscrowEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.MerchantEscrow, error) {
	escrow, ok, err := reg.MerchantEscrows.Get(e.EscrowID)
	if err != nil {
		return nil, err
	}
	if ok {
		return escrow, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("merchant escrow not found: %s", e.EscrowID)
	}
	escrow = domain.NewMerchantEscrow(e.EscrowID)
	escrow.CryptoAccountKey = e.CryptoAccountKey
	escrow.FiatAccountKey = e.FiatAccountKey
	escrow.CryptoAmount = e.CryptoAmount
	escrow.FiatAmount = e.FiatAmount
	escrow.FiatCurrency = e.FiatCurrency
	return escrow, nil
}
