package engine

import (
	"fmt"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
)

// MerchantEscrowEngine processes the merchant escrow mint/burn pair. MINT
// freezes the crypto leg and credits the fiat leg; BURN reverses both legs
// on the same record.
type MerchantEscrowEngine struct {
	base
}

func NewMerchantEscrowEngine(reg *cache.Registry) *MerchantEscrowEngine {
	return &MerchantEscrowEngine{base: newBase(reg)}
}

func (e *MerchantEscrowEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *MerchantEscrowEngine) Process(ev *event.MerchantEscrowEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpMerchantEscrowMint:
		return e.mint(ev)
	case event.OpMerchantEscrowBurn:
		return e.burn(ev)
	default:
		return failure(nil, fmt.Errorf("merchant_escrow event: unsupported operation %q", ev.Op))
	}
}

func (e *MerchantEscrowEngine) mint(ev *event.MerchantEscrowEvent) Result {
	escrow, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	escrow.Status = domain.EscrowStatusActive
	escrow.CreatedAt = e.now()
	escrow.UpdatedAt = escrow.CreatedAt
	if err := escrow.Validate(); err != nil {
		return failure(escrow, err)
	}

	crypto, err := e.reg.Accounts.GetOrCreate(escrow.CryptoAccountKey)
	if err != nil {
		return failure(escrow, err)
	}
	if err := crypto.Freeze(escrow.CryptoAmount); err != nil {
		return failure(escrow, err)
	}
	fiat, err := e.reg.Accounts.GetOrCreate(escrow.FiatAccountKey)
	if err != nil {
		return failure(escrow, err)
	}
	if err := fiat.Credit(escrow.FiatAmount); err != nil {
		return failure(escrow, err)
	}
	crypto.UpdatedAt = escrow.CreatedAt
	fiat.UpdatedAt = escrow.CreatedAt

	if err := e.reg.Accounts.Update(crypto); err != nil {
		return failure(escrow, err)
	}
	if err := e.reg.Accounts.Update(fiat); err != nil {
		return failure(escrow, err)
	}
	if err := e.reg.MerchantEscrows.Update(escrow); err != nil {
		return failure(escrow, err)
	}
	return success(escrow)
}

func (e *MerchantEscrowEngine) burn(ev *event.MerchantEscrowEvent) Result {
	escrow, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if escrow.Status == domain.EscrowStatusBurned {
		return failure(escrow, fmt.Errorf("merchant escrow %s is already burned", escrow.ID))
	}

	crypto, err := e.reg.Accounts.GetOrCreate(escrow.CryptoAccountKey)
	if err != nil {
		return failure(escrow, err)
	}
	if err := crypto.Unfreeze(escrow.CryptoAmount); err != nil {
		return failure(escrow, err)
	}
	fiat, err := e.reg.Accounts.GetOrCreate(escrow.FiatAccountKey)
	if err != nil {
		return failure(escrow, err)
	}
	if err := fiat.Debit(escrow.FiatAmount); err != nil {
		return failure(escrow, err)
	}
	now := e.now()
	crypto.UpdatedAt = now
	fiat.UpdatedAt = now
	escrow.Status = domain.EscrowStatusBurned
	escrow.BurnedAt = now
	escrow.UpdatedAt = now

	if err := e.reg.Accounts.Update(crypto); err != nil {
		return failure(escrow, err)
	}
	if err := e.reg.Accounts.Update(fiat); err != nil {
		return failure(escrow, err)
	}
	if err := e.reg.MerchantEscrows.Update(escrow); err != nil {
		return failure(escrow, err)
	}
	return success(escrow)
}
