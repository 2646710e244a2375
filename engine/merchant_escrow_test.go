package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"exchcore/domain"
	"exchcore/event"
)

func TestMerchantEscrowMintMovesBothLegs(t *testing.T) {
	d, reg := newTestDispatcher(t)
	fundAccount(t, reg, "usdt:merchant", "500")

	res := d.MerchantEscrows.Process(&event.MerchantEscrowEvent{
		Base:             event.NewBase(event.OpMerchantEscrowMint),
		EscrowID:         "esc-1",
		CryptoAccountKey: "usdt:merchant",
		FiatAccountKey:   "vnd:merchant",
		CryptoAmount:     dec(t, "200"),
		FiatAmount:       dec(t, "5000000"),
		FiatCurrency:     "vnd",
	})
	require.NoError(t, res.Err)
	require.Equal(t, domain.EscrowStatusActive, res.Entity.(*domain.MerchantEscrow).Status)

	crypto := accountOf(t, reg, "usdt:merchant")
	require.Equal(t, "300", crypto.Available.String())
	require.Equal(t, "200", crypto.Frozen.String())

	fiat := accountOf(t, reg, "vnd:merchant")
	require.Equal(t, "5000000", fiat.Available.String())
}

func TestMerchantEscrowBurnReversesBothLegs(t *testing.T) {
	d, reg := newTestDispatcher(t)
	fundAccount(t, reg, "usdt:merchant", "500")

	require.NoError(t, d.MerchantEscrows.Process(&event.MerchantEscrowEvent{
		Base:             event.NewBase(event.OpMerchantEscrowMint),
		EscrowID:         "esc-1",
		CryptoAccountKey: "usdt:merchant",
		FiatAccountKey:   "vnd:merchant",
		CryptoAmount:     dec(t, "200"),
		FiatAmount:       dec(t, "5000000"),
		FiatCurrency:     "vnd",
	}).Err)

	res := d.MerchantEscrows.Process(&event.MerchantEscrowEvent{
		Base:     event.NewBase(event.OpMerchantEscrowBurn),
		EscrowID: "esc-1",
	})
	require.NoError(t, res.Err)
	require.Equal(t, domain.EscrowStatusBurned, res.Entity.(*domain.MerchantEscrow).Status)

	crypto := accountOf(t, reg, "usdt:merchant")
	require.Equal(t, "500", crypto.Available.String())
	require.True(t, crypto.Frozen.IsZero())

	fiat := accountOf(t, reg, "vnd:merchant")
	require.True(t, fiat.Available.IsZero())
}

func TestMerchantEscrowBurnTwiceFails(t *testing.T) {
	d, reg := newTestDispatcher(t)
	fundAccount(t, reg, "usdt:merchant", "500")

	require.NoError(t, d.MerchantEscrows.Process(&event.MerchantEscrowEvent{
		Base:             event.NewBase(event.OpMerchantEscrowMint),
		EscrowID:         "esc-1",
		CryptoAccountKey: "usdt:merchant",
		FiatAccountKey:   "vnd:merchant",
		CryptoAmount:     dec(t, "200"),
		FiatAmount:       dec(t, "5000000"),
		FiatCurrency:     "vnd",
	}).Err)
	burn := &event.MerchantEscrowEvent{
		Base:     event.NewBase(event.OpMerchantEscrowBurn),
		EscrowID: "esc-1",
	}
	require.NoError(t, d.MerchantEscrows.Process(burn).Err)

	res := d.MerchantEscrows.Process(burn)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "already burned")
}

func TestMerchantEscrowMintInsufficientCrypto(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := d.MerchantEscrows.Process(&event.MerchantEscrowEvent{
		Base:             event.NewBase(event.OpMerchantEscrowMint),
		EscrowID:         "esc-1",
		CryptoAccountKey: "usdt:merchant",
		FiatAccountKey:   "vnd:merchant",
		CryptoAmount:     dec(t, "200"),
		FiatAmount:       dec(t, "5000000"),
		FiatCurrency:     "vnd",
	})
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "insufficient available balance")
}

func TestMerchantEscrowMintDuplicateFails(t *testing.T) {
	d, reg := newTestDispatcher(t)
	fundAccount(t, reg, "usdt:merchant", "500")

	mint := &event.MerchantEscrowEvent{
		Base:             event.NewBase(event.OpMerchantEscrowMint),
		EscrowID:         "esc-1",
		CryptoAccountKey: "usdt:merchant",
		FiatAccountKey:   "vnd:merchant",
		CryptoAmount:     dec(t, "200"),
		FiatAmount:       dec(t, "5000000"),
		FiatCurrency:     "vnd",
	}
	require.NoError(t, d.MerchantEscrows.Process(mint).Err)

	res := d.MerchantEscrows.Process(mint)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "already exists")
}
