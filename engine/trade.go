package engine

import (
	"fmt"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
)

// TradeEngine processes P2P trades against offers. CREATE reserves the
// seller's coin and decrements the offer's available amount; RELEASE moves
// the coin to the buyer; CANCEL returns both reservations.
type TradeEngine struct {
	base
}

func NewTradeEngine(reg *cache.Registry) *TradeEngine {
	return &TradeEngine{base: newBase(reg)}
}

func (e *TradeEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *TradeEngine) Process(ev *event.TradeEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpTradeCreate:
		return e.create(ev)
	case event.OpTradeRelease:
		return e.release(ev)
	case event.OpTradeCancel:
		return e.cancel(ev)
	default:
		return failure(nil, fmt.Errorf("trade event: unsupported operation %q", ev.Op))
	}
}

func (e *TradeEngine) create(ev *event.TradeEvent) Result {
	trade, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	trade.Status = domain.TradeStatusUnpaid
	trade.CreatedAt = e.now()
	trade.UpdatedAt = trade.CreatedAt
	if err := trade.Validate(); err != nil {
		return failure(trade, err)
	}

	offer, ok, err := e.reg.Offers.Get(trade.OfferID)
	if err != nil {
		return failure(trade, err)
	}
	if !ok {
		return failure(trade, fmt.Errorf("offer not found: %s", trade.OfferID))
	}
	if offer.Disabled || offer.Deleted {
		return failure(trade, fmt.Errorf("offer %s is disabled or deleted", offer.ID))
	}
	if offer.AvailableAmount.LessThan(trade.CoinAmount) {
		return failure(trade, fmt.Errorf("offer %s: available amount %s is below trade amount %s", offer.ID, offer.AvailableAmount, trade.CoinAmount))
	}

	seller, err := e.reg.Accounts.GetOrCreate(trade.SellerAccountKey)
	if err != nil {
		return failure(trade, err)
	}
	if err := seller.Freeze(trade.CoinAmount); err != nil {
		return failure(trade, err)
	}
	seller.UpdatedAt = trade.CreatedAt

	offer.AvailableAmount = offer.AvailableAmount.Sub(trade.CoinAmount)
	offer.UpdatedAt = trade.CreatedAt

	if err := e.reg.Accounts.Update(seller); err != nil {
		return failure(trade, err)
	}
	if err := e.reg.Offers.Update(offer); err != nil {
		return failure(trade, err)
	}
	if err := e.reg.Trades.Update(trade); err != nil {
		return failure(trade, err)
	}
	return success(trade)
}

// release burns the seller's frozen coin and credits the buyer, net of the
// trade fee.
func (e *TradeEngine) release(ev *event.TradeEvent) Result {
	trade, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if trade.Status.Terminal() {
		return failure(trade, fmt.Errorf("trade %s is already %s", trade.ID, trade.Status))
	}

	seller, err := e.reg.Accounts.GetOrCreate(trade.SellerAccountKey)
	if err != nil {
		return failure(trade, err)
	}
	buyer, err := e.reg.Accounts.GetOrCreate(trade.BuyerAccountKey)
	if err != nil {
		return failure(trade, err)
	}
	if err := seller.BurnFrozen(trade.CoinAmount); err != nil {
		return failure(trade, err)
	}
	fee := trade.CoinAmount.Mul(trade.FeeRatio)
	if err := buyer.Credit(trade.CoinAmount.Sub(fee)); err != nil {
		return failure(trade, err)
	}
	now := e.now()
	seller.UpdatedAt = now
	buyer.UpdatedAt = now
	trade.Status = domain.TradeStatusReleased
	trade.ReleasedAt = now
	trade.UpdatedAt = now

	if err := e.reg.Accounts.Update(seller); err != nil {
		return failure(trade, err)
	}
	if err := e.reg.Accounts.Update(buyer); err != nil {
		return failure(trade, err)
	}
	if err := e.reg.Trades.Update(trade); err != nil {
		return failure(trade, err)
	}
	return success(trade)
}

// cancel unfreezes the seller's coin and restores the offer's available
// amount.
func (e *TradeEngine) cancel(ev *event.TradeEvent) Result {
	trade, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if trade.Status.Terminal() {
		return failure(trade, fmt.Errorf("trade %s is already %s", trade.ID, trade.Status))
	}

	seller, err := e.reg.Accounts.GetOrCreate(trade.SellerAccountKey)
	if err != nil {
		return failure(trade, err)
	}
	if err := seller.Unfreeze(trade.CoinAmount); err != nil {
		return failure(trade, err)
	}
	now := e.now()
	seller.UpdatedAt = now
	trade.Status = domain.TradeStatusCancelled
	trade.UpdatedAt = now

	if err := e.reg.Accounts.Update(seller); err != nil {
		return failure(trade, err)
	}
	offer, ok, err := e.reg.Offers.Get(trade.OfferID)
	if err != nil {
		return failure(trade, err)
	}
	if ok && !offer.Deleted {
		offer.AvailableAmount = offer.AvailableAmount.Add(trade.CoinAmount)
		if offer.AvailableAmount.GreaterThan(offer.TotalAmount) {
			offer.AvailableAmount = offer.TotalAmount
		}
		offer.UpdatedAt = now
		if err := e.reg.Offers.Update(offer); err != nil {
			return failure(trade, err)
		}
	}
	if err := e.reg.Trades.Update(trade); err != nil {
		return failure(trade, err)
	}
	return success(trade)
}
