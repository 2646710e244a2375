package engine

import (
	"fmt"

	"exchcore/cache"
	"exchcore/event"
)

// Dispatcher routes an envelope to the engine owning its event family. The
// type switch over the sealed event set makes an unknown variant an explicit
// error case rather than a silent drop.
type Dispatcher struct {
	Deposits        *DepositEngine
	Withdrawals     *WithdrawalEngine
	BalanceLocks    *BalanceLockEngine
	Offers          *OfferEngine
	Trades          *TradeEngine
	MerchantEscrows *MerchantEscrowEngine
	AmmPools        *AmmPoolEngine
	AmmPositions    *AmmPositionEngine
	AmmOrders       *AmmOrderEngine
	TickQueries     *TickQueryEngine
}

// NewDispatcher builds every engine over one cache registry.
func NewDispatcher(reg *cache.Registry) *Dispatcher {
	return &Dispatcher{
		Deposits:        NewDepositEngine(reg),
		Withdrawals:     NewWithdrawalEngine(reg),
		BalanceLocks:    NewBalanceLockEngine(reg),
		Offers:          NewOfferEngine(reg),
		Trades:          NewTradeEngine(reg),
		MerchantEscrows: NewMerchantEscrowEngine(reg),
		AmmPools:        NewAmmPoolEngine(reg),
		AmmPositions:    NewAmmPositionEngine(reg),
		AmmOrders:       NewAmmOrderEngine(reg),
		TickQueries:     NewTickQueryEngine(reg),
	}
}

// SetNowFunc overrides the time source of every engine at once, primarily
// used in tests.
func (d *Dispatcher) SetNowFunc(now func() int64) {
	d.Deposits.SetNowFunc(now)
	d.Withdrawals.SetNowFunc(now)
	d.BalanceLocks.SetNowFunc(now)
	d.Offers.SetNowFunc(now)
	d.Trades.SetNowFunc(now)
	d.MerchantEscrows.SetNowFunc(now)
	d.AmmPools.SetNowFunc(now)
	d.AmmPositions.SetNowFunc(now)
	d.AmmOrders.SetNowFunc(now)
}

// Dispatch runs the event through its engine and returns the outcome.
func (d *Dispatcher) Dispatch(ev event.Event) Result {
	switch typed := ev.(type) {
	case *event.CoinDepositEvent:
		return d.Deposits.Process(typed)
	case *event.CoinWithdrawalEvent:
		return d.Withdrawals.Process(typed)
	case *event.BalanceLockEvent:
		return d.BalanceLocks.Process(typed)
	case *event.OfferEvent:
		return d.Offers.Process(typed)
	case *event.TradeEvent:
		return d.Trades.Process(typed)
	case *event.MerchantEscrowEvent:
		return d.MerchantEscrows.Process(typed)
	case *event.AmmPoolEvent:
		return d.AmmPools.Process(typed)
	case *event.AmmPositionEvent:
		return d.AmmPositions.Process(typed)
	case *event.AmmOrderEvent:
		return d.AmmOrders.Process(typed)
	case *event.TickQueryEvent:
		return d.TickQueries.Process(typed)
	default:
		return failure(nil, fmt.Errorf("dispatcher: unknown event variant %T", ev))
	}
}
