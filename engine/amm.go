package engine

import (
	"fmt"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
)

// AmmPoolEngine processes pool creation and configuration updates.
type AmmPoolEngine struct {
	base
}

func NewAmmPoolEngine(reg *cache.Registry) *AmmPoolEngine {
	return &AmmPoolEngine{base: newBase(reg)}
}

func (e *AmmPoolEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *AmmPoolEngine) Process(ev *event.AmmPoolEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpAmmPoolCreate:
		return e.create(ev)
	case event.OpAmmPoolUpdate:
		return e.update(ev)
	default:
		return failure(nil, fmt.Errorf("amm_pool event: unsupported operation %q", ev.Op))
	}
}

func (e *AmmPoolEngine) create(ev *event.AmmPoolEvent) Result {
	pool, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	pool.CreatedAt = e.now()
	pool.UpdatedAt = pool.CreatedAt
	if !ev.InitPrice.IsZero() {
		if err := pool.SetInitPrice(ev.InitPrice); err != nil {
			return failure(pool, err)
		}
	}
	if err := pool.Validate(); err != nil {
		return failure(pool, err)
	}
	// seed the pool's liquidity index alongside the pool itself
	bitmap := domain.NewTickBitmap(pool.Pair)
	bitmap.UpdatedAt = pool.CreatedAt
	if err := e.reg.TickBitmaps.Update(bitmap); err != nil {
		return failure(pool, err)
	}
	if err := e.reg.AmmPools.Update(pool); err != nil {
		return failure(pool, err)
	}
	return success(pool)
}

func (e *AmmPoolEngine) update(ev *event.AmmPoolEvent) Result {
	pool, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if ev.FeePercentage != nil {
		pool.FeePercentage = *ev.FeePercentage
	}
	if ev.ProtocolFeePercentage != nil {
		pool.ProtocolFeePercentage = *ev.ProtocolFeePercentage
	}
	if !ev.InitPrice.IsZero() {
		if err := pool.SetInitPrice(ev.InitPrice); err != nil {
			return failure(pool, err)
		}
	}
	if ev.Active != nil {
		pool.Active = *ev.Active
	}
	pool.UpdatedAt = e.now()
	if err := pool.Validate(); err != nil {
		return failure(pool, err)
	}
	if err := e.reg.AmmPools.Update(pool); err != nil {
		return failure(pool, err)
	}
	return success(pool)
}

// AmmPositionEngine processes the liquidity position lifecycle. Creating or
// closing a position updates the boundary Tick records and the pool's bitmap
// in the same pipeline step, keeping the bit-set-iff-liquid invariant intact.
type AmmPositionEngine struct {
	base
}

func NewAmmPositionEngine(reg *cache.Registry) *AmmPositionEngine {
	return &AmmPositionEngine{base: newBase(reg)}
}

func (e *AmmPositionEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *AmmPositionEngine) Process(ev *event.AmmPositionEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpAmmPositionCreate:
		return e.create(ev)
	case event.OpAmmPositionCollectFee:
		return e.collectFee(ev)
	case event.OpAmmPositionClose:
		return e.close(ev)
	default:
		return failure(nil, fmt.Errorf("amm_position event: unsupported operation %q", ev.Op))
	}
}

// applyTickDelta adjusts one boundary tick and mirrors its activity in the
// bitmap.
func (e *AmmPositionEngine) applyTickDelta(pool *domain.AmmPool, bitmap *domain.TickBitmap, tickIndex int32, add, upper bool, position *domain.AmmPosition, now int64) error {
	tick, err := e.reg.Ticks.GetOrCreate(domain.TickKeyFor(pool.Pair, tickIndex))
	if err != nil {
		return err
	}
	if tick.CreatedAt == 0 {
		tick.CreatedAt = now
	}
	if add {
		if err := tick.AddLiquidity(position.Liquidity, upper); err != nil {
			return err
		}
	} else {
		if err := tick.RemoveLiquidity(position.Liquidity, upper); err != nil {
			return err
		}
	}
	tick.UpdatedAt = now
	if err := e.reg.Ticks.Update(tick); err != nil {
		return err
	}
	bitPosition := tickIndex / pool.TickSpacing
	if tick.Active() {
		bitmap.SetBit(bitPosition)
	} else {
		bitmap.ClearBit(bitPosition)
	}
	return nil
}

func (e *AmmPositionEngine) create(ev *event.AmmPositionEvent) Result {
	position, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	now := e.now()
	position.CreatedAt = now
	position.UpdatedAt = now

	pool, ok, err := e.reg.AmmPools.Get(position.PoolPair)
	if err != nil {
		return failure(position, err)
	}
	if !ok {
		return failure(position, fmt.Errorf("amm pool not found: %s", position.PoolPair))
	}
	if err := position.Validate(pool.TickSpacing); err != nil {
		return failure(position, err)
	}

	// pull the funding legs from the owner accounts
	owner0, err := e.reg.Accounts.GetOrCreate(position.OwnerKey0)
	if err != nil {
		return failure(position, err)
	}
	owner1, err := e.reg.Accounts.GetOrCreate(position.OwnerKey1)
	if err != nil {
		return failure(position, err)
	}
	if position.Amount0.IsPositive() {
		if err := owner0.Debit(position.Amount0); err != nil {
			return failure(position, err)
		}
	}
	if position.Amount1.IsPositive() {
		if err := owner1.Debit(position.Amount1); err != nil {
			return failure(position, err)
		}
	}
	owner0.UpdatedAt = now
	owner1.UpdatedAt = now

	// the position record commits first: a retried create stops at the
	// duplicate check instead of re-adding tick liquidity
	position.Status = domain.PositionStatusOpen
	if err := e.reg.AmmPositions.Update(position); err != nil {
		return failure(position, err)
	}

	bitmap, err := e.reg.TickBitmaps.GetOrCreate(pool.Pair)
	if err != nil {
		return failure(position, err)
	}
	if err := e.applyTickDelta(pool, bitmap, position.TickLower, true, false, position, now); err != nil {
		return failure(position, err)
	}
	if err := e.applyTickDelta(pool, bitmap, position.TickUpper, true, true, position, now); err != nil {
		return failure(position, err)
	}
	bitmap.UpdatedAt = now
	// the bitmap persists right behind the tick records; account and pool
	// writes come after so a failed pass cannot leave a tick active
	// without its bit
	if err := e.reg.TickBitmaps.Update(bitmap); err != nil {
		return failure(position, err)
	}

	pool.TotalValueLocked0 = pool.TotalValueLocked0.Add(position.Amount0)
	pool.TotalValueLocked1 = pool.TotalValueLocked1.Add(position.Amount1)
	pool.Liquidity = pool.Liquidity.Add(position.Liquidity)
	pool.UpdatedAt = now

	if err := e.reg.Accounts.Update(owner0); err != nil {
		return failure(position, err)
	}
	if err := e.reg.Accounts.Update(owner1); err != nil {
		return failure(position, err)
	}
	if err := e.reg.AmmPools.Update(pool); err != nil {
		return failure(position, err)
	}
	return success(position)
}

// collectFee credits the owners with the fee amounts attested upstream; the
// fee accrual formula itself lives outside this core.
func (e *AmmPositionEngine) collectFee(ev *event.AmmPositionEvent) Result {
	position, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if position.Status == domain.PositionStatusClosed {
		return failure(position, fmt.Errorf("amm position %s is closed", position.ID))
	}
	if ev.Amount0.IsNegative() || ev.Amount1.IsNegative() {
		return failure(position, fmt.Errorf("amm position %s: fee amounts must not be negative", position.ID))
	}
	now := e.now()
	if ev.Amount0.IsPositive() {
		owner0, err := e.reg.Accounts.GetOrCreate(position.OwnerKey0)
		if err != nil {
			return failure(position, err)
		}
		if err := owner0.Credit(ev.Amount0); err != nil {
			return failure(position, err)
		}
		owner0.UpdatedAt = now
		if err := e.reg.Accounts.Update(owner0); err != nil {
			return failure(position, err)
		}
	}
	if ev.Amount1.IsPositive() {
		owner1, err := e.reg.Accounts.GetOrCreate(position.OwnerKey1)
		if err != nil {
			return failure(position, err)
		}
		if err := owner1.Credit(ev.Amount1); err != nil {
			return failure(position, err)
		}
		owner1.UpdatedAt = now
		if err := e.reg.Accounts.Update(owner1); err != nil {
			return failure(position, err)
		}
	}
	position.FeeCollected = position.FeeCollected.Add(ev.Amount0).Add(ev.Amount1)
	position.UpdatedAt = now
	if err := e.reg.AmmPositions.Update(position); err != nil {
		return failure(position, err)
	}
	return success(position)
}

func (e *AmmPositionEngine) close(ev *event.AmmPositionEvent) Result {
	position, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if position.Status == domain.PositionStatusClosed {
		return failure(position, fmt.Errorf("amm position %s is already closed", position.ID))
	}

	pool, ok, err := e.reg.AmmPools.Get(position.PoolPair)
	if err != nil {
		return failure(position, err)
	}
	if !ok {
		return failure(position, fmt.Errorf("amm pool not found: %s", position.PoolPair))
	}
	now := e.now()

	// mark closed up front: a retried close stops at the terminal check
	// instead of removing tick liquidity twice
	position.Status = domain.PositionStatusClosed
	position.UpdatedAt = now
	if err := e.reg.AmmPositions.Update(position); err != nil {
		return failure(position, err)
	}

	bitmap, err := e.reg.TickBitmaps.GetOrCreate(pool.Pair)
	if err != nil {
		return failure(position, err)
	}
	if err := e.applyTickDelta(pool, bitmap, position.TickLower, false, false, position, now); err != nil {
		return failure(position, err)
	}
	if err := e.applyTickDelta(pool, bitmap, position.TickUpper, false, true, position, now); err != nil {
		return failure(position, err)
	}
	bitmap.UpdatedAt = now
	// bitmap persists right behind the tick records, before any account or
	// pool write
	if err := e.reg.TickBitmaps.Update(bitmap); err != nil {
		return failure(position, err)
	}

	// return the current amounts to the owners
	owner0, err := e.reg.Accounts.GetOrCreate(position.OwnerKey0)
	if err != nil {
		return failure(position, err)
	}
	owner1, err := e.reg.Accounts.GetOrCreate(position.OwnerKey1)
	if err != nil {
		return failure(position, err)
	}
	if position.Amount0.IsPositive() {
		if err := owner0.Credit(position.Amount0); err != nil {
			return failure(position, err)
		}
	}
	if position.Amount1.IsPositive() {
		if err := owner1.Credit(position.Amount1); err != nil {
			return failure(position, err)
		}
	}
	owner0.UpdatedAt = now
	owner1.UpdatedAt = now

	pool.TotalValueLocked0 = pool.TotalValueLocked0.Sub(position.Amount0)
	pool.TotalValueLocked1 = pool.TotalValueLocked1.Sub(position.Amount1)
	pool.Liquidity = pool.Liquidity.Sub(position.Liquidity)
	pool.UpdatedAt = now

	if err := e.reg.Accounts.Update(owner0); err != nil {
		return failure(position, err)
	}
	if err := e.reg.Accounts.Update(owner1); err != nil {
		return failure(position, err)
	}
	if err := e.reg.AmmPools.Update(pool); err != nil {
		return failure(position, err)
	}
	return success(position)
}

// AmmOrderEngine records swap orders. Orders are create-once; execution
// against the swap curve happens outside this core and reports back through
// later events.
type AmmOrderEngine struct {
	base
}

func NewAmmOrderEngine(reg *cache.Registry) *AmmOrderEngine {
	return &AmmOrderEngine{base: newBase(reg)}
}

func (e *AmmOrderEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *AmmOrderEngine) Process(ev *event.AmmOrderEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	order, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	now := e.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if err := order.Validate(); err != nil {
		return failure(order, err)
	}

	pool, ok, err := e.reg.AmmPools.Get(order.PoolPair)
	if err != nil {
		return failure(order, err)
	}
	if !ok {
		return failure(order, fmt.Errorf("amm pool not found: %s", order.PoolPair))
	}
	if !pool.Active {
		return failure(order, fmt.Errorf("amm pool %s is not active", pool.Pair))
	}

	// reserve the input leg until execution reports back
	inputKey := order.OwnerKey0
	if !order.ZeroForOne {
		inputKey = order.OwnerKey1
	}
	input, err := e.reg.Accounts.GetOrCreate(inputKey)
	if err != nil {
		return failure(order, err)
	}
	if err := input.Freeze(order.AmountSpecified); err != nil {
		return failure(order, err)
	}
	input.UpdatedAt = now
	order.Status = domain.OrderStatusProcessing

	if err := e.reg.Accounts.Update(input); err != nil {
		return failure(order, err)
	}
	if err := e.reg.AmmOrders.Update(order); err != nil {
		return failure(order, err)
	}
	return success(order)
}

// TickQueryEngine answers read-only active-tick queries from the bitmap
// index.
type TickQueryEngine struct {
	base
}

func NewTickQueryEngine(reg *cache.Registry) *TickQueryEngine {
	return &TickQueryEngine{base: newBase(reg)}
}

// ActiveTicks is the notification object for a tick query.
type ActiveTicks struct {
	PoolPair  string  `json:"pool_pair"`
	Positions []int32 `json:"positions"`
}

func (e *TickQueryEngine) Process(ev *event.TickQueryEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	bitmap, err := ev.Resolve(e.reg)
	if err != nil {
		return failure(nil, err)
	}
	return success(&ActiveTicks{PoolPair: bitmap.PoolPair, Positions: bitmap.GetSetBits()})
}
