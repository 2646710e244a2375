package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"exchcore/domain"
	"exchcore/event"
)

func createOffer(t *testing.T, d *Dispatcher, id, total string) {
	t.Helper()
	res := d.Offers.Process(&event.OfferEvent{
		Base:         event.NewBase(event.OpOfferCreate),
		OfferID:      id,
		UserID:       "user-1",
		OfferType:    "sell",
		CoinCurrency: "btc",
		Currency:     "usd",
		Price:        dec(t, "50000"),
		TotalAmount:  dec(t, total),
	})
	require.NoError(t, res.Err)
}

func TestTradeCreateFreezesSellerAndDecrementsOffer(t *testing.T) {
	d, reg := newTestDispatcher(t)
	createOffer(t, d, "offer-1", "10")
	fundAccount(t, reg, "btc:seller", "10")

	res := d.Trades.Process(&event.TradeEvent{
		Base:             event.NewBase(event.OpTradeCreate),
		TradeID:          "trade-1",
		OfferID:          "offer-1",
		BuyerAccountKey:  "btc:buyer",
		SellerAccountKey: "btc:seller",
		CoinCurrency:     "btc",
		FiatCurrency:     "usd",
		CoinAmount:       dec(t, "2"),
		Price:            dec(t, "50000"),
		FeeRatio:         dec(t, "0.01"),
	})
	require.NoError(t, res.Err)

	trade := res.Entity.(*domain.Trade)
	require.Equal(t, domain.TradeStatusUnpaid, trade.Status)
	require.Equal(t, "100000", trade.FiatAmount.String())

	seller := accountOf(t, reg, "btc:seller")
	require.Equal(t, "8", seller.Available.String())
	require.Equal(t, "2", seller.Frozen.String())

	offer, _, err := reg.Offers.Get("offer-1")
	require.NoError(t, err)
	require.Equal(t, "8", offer.AvailableAmount.String())
}

func TestTradeCreateExceedsOfferAvailable(t *testing.T) {
	d, reg := newTestDispatcher(t)
	createOffer(t, d, "offer-1", "1")
	fundAccount(t, reg, "btc:seller", "10")

	res := d.Trades.Process(&event.TradeEvent{
		Base:             event.NewBase(event.OpTradeCreate),
		TradeID:          "trade-1",
		OfferID:          "offer-1",
		BuyerAccountKey:  "btc:buyer",
		SellerAccountKey: "btc:seller",
		CoinAmount:       dec(t, "2"),
		Price:            dec(t, "50000"),
	})
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "below trade amount")
}

func TestTradeCreateDisabledOfferFails(t *testing.T) {
	d, reg := newTestDispatcher(t)
	createOffer(t, d, "offer-1", "10")
	fundAccount(t, reg, "btc:seller", "10")
	require.NoError(t, d.Offers.Process(&event.OfferEvent{
		Base:    event.NewBase(event.OpOfferDisable),
		OfferID: "offer-1",
	}).Err)

	res := d.Trades.Process(&event.TradeEvent{
		Base:             event.NewBase(event.OpTradeCreate),
		TradeID:          "trade-1",
		OfferID:          "offer-1",
		BuyerAccountKey:  "btc:buyer",
		SellerAccountKey: "btc:seller",
		CoinAmount:       dec(t, "2"),
		Price:            dec(t, "50000"),
	})
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "disabled or deleted")
}

func TestTradeReleaseCreditsBuyerNetOfFee(t *testing.T) {
	d, reg := newTestDispatcher(t)
	createOffer(t, d, "offer-1", "10")
	fundAccount(t, reg, "btc:seller", "10")

	require.NoError(t, d.Trades.Process(&event.TradeEvent{
		Base:             event.NewBase(event.OpTradeCreate),
		TradeID:          "trade-1",
		OfferID:          "offer-1",
		BuyerAccountKey:  "btc:buyer",
		SellerAccountKey: "btc:seller",
		CoinAmount:       dec(t, "2"),
		Price:            dec(t, "50000"),
		FeeRatio:         dec(t, "0.01"),
	}).Err)

	res := d.Trades.Process(&event.TradeEvent{
		Base:    event.NewBase(event.OpTradeRelease),
		TradeID: "trade-1",
	})
	require.NoError(t, res.Err)
	require.Equal(t, domain.TradeStatusReleased, res.Entity.(*domain.Trade).Status)

	seller := accountOf(t, reg, "btc:seller")
	require.Equal(t, "8", seller.Available.String())
	require.True(t, seller.Frozen.IsZero())

	// 2 minus the 1% fee
	buyer := accountOf(t, reg, "btc:buyer")
	require.Equal(t, "1.98", buyer.Available.String())
}

func TestTradeCancelRestoresSellerAndOffer(t *testing.T) {
	d, reg := newTestDispatcher(t)
	createOffer(t, d, "offer-1", "10")
	fundAccount(t, reg, "btc:seller", "10")

	require.NoError(t, d.Trades.Process(&event.TradeEvent{
		Base:             event.NewBase(event.OpTradeCreate),
		TradeID:          "trade-1",
		OfferID:          "offer-1",
		BuyerAccountKey:  "btc:buyer",
		SellerAccountKey: "btc:seller",
		CoinAmount:       dec(t, "2"),
		Price:            dec(t, "50000"),
	}).Err)

	res := d.Trades.Process(&event.TradeEvent{
		Base:    event.NewBase(event.OpTradeCancel),
		TradeID: "trade-1",
	})
	require.NoError(t, res.Err)
	require.Equal(t, domain.TradeStatusCancelled, res.Entity.(*domain.Trade).Status)

	seller := accountOf(t, reg, "btc:seller")
	require.Equal(t, "10", seller.Available.String())
	require.True(t, seller.Frozen.IsZero())

	offer, _, err := reg.Offers.Get("offer-1")
	require.NoError(t, err)
	require.Equal(t, "10", offer.AvailableAmount.String())
}

func TestTradeReleaseAfterCancelFails(t *testing.T) {
	d, reg := newTestDispatcher(t)
	createOffer(t, d, "offer-1", "10")
	fundAccount(t, reg, "btc:seller", "10")

	require.NoError(t, d.Trades.Process(&event.TradeEvent{
		Base:             event.NewBase(event.OpTradeCreate),
		TradeID:          "trade-1",
		OfferID:          "offer-1",
		BuyerAccountKey:  "btc:buyer",
		SellerAccountKey: "btc:seller",
		CoinAmount:       dec(t, "2"),
		Price:            dec(t, "50000"),
	}).Err)
	require.NoError(t, d.Trades.Process(&event.TradeEvent{
		Base:    event.NewBase(event.OpTradeCancel),
		TradeID: "trade-1",
	}).Err)

	res := d.Trades.Process(&event.TradeEvent{
		Base:    event.NewBase(event.OpTradeRelease),
		TradeID: "trade-1",
	})
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "already cancelled")
}

func TestTradeCreateUnknownOfferFails(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := d.Trades.Process(&event.TradeEvent{
		Base:             event.NewBase(event.OpTradeCreate),
		TradeID:          "trade-1",
		OfferID:          "ghost",
		BuyerAccountKey:  "btc:buyer",
		SellerAccountKey: "btc:seller",
		CoinAmount:       dec(t, "1"),
		Price:            dec(t, "50000"),
	})
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "offer not found: ghost")
}
