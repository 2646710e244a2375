package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestDepositDecimalRoundTripIsExact(t *testing.T) {
	d := NewCoinDeposit("dep-1")
	d.AccountKey = AccountKeyFor("btc", "user-1")
	d.Amount = dec(t, "21.21")
	d.Fee = dec(t, "0.01")

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"21.21"`)

	restored := &CoinDeposit{}
	require.NoError(t, json.Unmarshal(raw, restored))
	require.Equal(t, "21.21", restored.Amount.String())
	require.True(t, restored.Amount.Equal(d.Amount))
}

func TestDepositAmountParsesIdenticallyAcrossPayloads(t *testing.T) {
	first, err := decimal.NewFromString("21.21")
	require.NoError(t, err)
	second, err := decimal.NewFromString("21.21")
	require.NoError(t, err)
	require.True(t, first.Equal(second))
	require.Equal(t, first.String(), second.String())
}

func TestAccountFreezeUnfreeze(t *testing.T) {
	acct := NewAccount(AccountKeyFor("usdt", "alice"))
	require.NoError(t, acct.Credit(dec(t, "100")))

	require.NoError(t, acct.Freeze(dec(t, "40")))
	require.Equal(t, "60", acct.Available.String())
	require.Equal(t, "40", acct.Frozen.String())

	err := acct.Freeze(dec(t, "100"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient available balance")

	require.NoError(t, acct.Unfreeze(dec(t, "40")))
	require.Equal(t, "100", acct.Available.String())
	require.True(t, acct.Frozen.IsZero())
}

func TestOfferAvailableNeverExceedsTotal(t *testing.T) {
	offer := NewOffer("offer-1")
	offer.UserID = "user-1"
	offer.Price = dec(t, "45000")
	offer.TotalAmount = dec(t, "10")
	offer.AvailableAmount = dec(t, "11")

	err := offer.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds total amount")

	offer.AvailableAmount = dec(t, "10")
	require.NoError(t, offer.Validate())
}

func TestTradeFiatAmountIdentity(t *testing.T) {
	trade := NewTrade("trade-1")
	trade.OfferID = "offer-1"
	trade.BuyerAccountKey = AccountKeyFor("btc", "buyer")
	trade.SellerAccountKey = AccountKeyFor("btc", "seller")
	trade.CoinAmount = dec(t, "0.5")
	trade.Price = dec(t, "45000.10")
	trade.FiatAmount = dec(t, "22500.05")

	require.NoError(t, trade.Validate())

	trade.FiatAmount = dec(t, "22500.06")
	err := trade.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not equal price * coin amount")
}

func TestPoolInitPriceRules(t *testing.T) {
	pool := NewAmmPool("BTC/USDT")
	pool.Token0 = "BTC"
	pool.Token1 = "USDT"
	pool.TickSpacing = 10
	require.NoError(t, pool.Validate())

	pool.Active = true
	err := pool.SetInitPrice(dec(t, "45000"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "active pool")

	pool.Active = false
	pool.TotalValueLocked0 = dec(t, "1")
	err = pool.SetInitPrice(dec(t, "45000"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "liquidity")

	pool.TotalValueLocked0 = decimal.Zero
	require.NoError(t, pool.SetInitPrice(dec(t, "45000")))
	require.Equal(t, "45000", pool.Price.String())
}

func TestBalanceLockValidate(t *testing.T) {
	lock := NewBalanceLock("lock-1")
	err := lock.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "AccountKeys list is required")

	lock.AccountKeys = []string{"a", "b"}
	require.NoError(t, lock.Validate())
}

func TestMerchantEscrowRequiresPositiveLegs(t *testing.T) {
	esc := NewMerchantEscrow("esc-1")
	esc.CryptoAccountKey = AccountKeyFor("usdt", "merchant")
	esc.FiatAccountKey = AccountKeyFor("vnd", "merchant")
	esc.CryptoAmount = dec(t, "0")
	esc.FiatAmount = dec(t, "1000000")

	err := esc.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "crypto amount must be positive")

	esc.CryptoAmount = dec(t, "40")
	require.NoError(t, esc.Validate())
}
