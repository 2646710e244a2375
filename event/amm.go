package event

import (
	"fmt"

	"github.com/shopspring/decimal"

	"exchcore/cache"
	"exchcore/domain"
)

// AmmPoolEvent drives pool creation and configuration updates. The fee and
// active fields are pointers so an absent field is distinguishable from an
// explicit zero or false.
type AmmPoolEvent struct {
	Base
	Pair                  string           `json:"pair"`
	Token0                string           `json:"token0"`
	Token1                string           `json:"token1"`
	TickSpacing           int32            `json:"tick_spacing"`
	FeePercentage         *decimal.Decimal `json:"fee_percentage,omitempty"`
	ProtocolFeePercentage *decimal.Decimal `json:"protocol_fee_percentage,omitempty"`
	InitPrice             decimal.Decimal  `json:"init_price"`
	Active                *bool            `json:"is_active,omitempty"`
}

func (e *AmmPoolEvent) Kind() Kind          { return KindAmmPool }
func (e *AmmPoolEvent) ActionID() string    { return e.Pair }
func (e *AmmPoolEvent) ProducerKey() string { return e.Pair }

func (e *AmmPoolEvent) supported() bool {
	return e.Op == OpAmmPoolCreate || e.Op == OpAmmPoolUpdate
}

func (e *AmmPoolEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindAmmPool, e.Op)
	}
	if err := requireFields(KindAmmPool,
		requiredField{"pair", e.Pair},
	); err != nil {
		return err
	}
	if e.Op == OpAmmPoolCreate {
		if err := requireFields(KindAmmPool,
			requiredField{"token0", e.Token0},
			requiredField{"token1", e.Token1},
		); err != nil {
			return err
		}
		if e.TickSpacing <= 0 {
			return fmt.Errorf("amm_pool event: tick spacing must be positive")
		}
	}
	if (e.FeePercentage != nil && e.FeePercentage.IsNegative()) ||
		(e.ProtocolFeePercentage != nil && e.ProtocolFeePercentage.IsNegative()) {
		return fmt.Errorf("amm_pool event: fee percentages must not be negative")
	}
	exists, err := reg.AmmPools.Exists(e.Pair)
	if err != nil {
		return err
	}
	if e.Op == OpAmmPoolCreate {
		if exists {
			return fmt.Errorf("amm pool %s already exists", e.Pair)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("amm pool not found: %s", e.Pair)
	}
	return nil
}

func (e *AmmPoolEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.AmmPool, error) {
	pool, ok, err := reg.AmmPools.Get(e.Pair)
	if err != nil {
		return nil, err
	}
	if ok {
		return pool, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("amm pool not found: %s", e.Pair)
	}
	pool = domain.NewAmmPool(e.Pair)
	pool.Token0 = e.Token0
	pool.Token1 = e.Token1
	pool.TickSpacing = e.TickSpacing
	if e.FeePercentage != nil {
		pool.FeePercentage = *e.FeePercentage
	}
	if e.ProtocolFeePercentage != nil {
		pool.ProtocolFeePercentage = *e.ProtocolFeePercentage
	}
	return pool, nil
}

// AmmPositionEvent drives the liquidity position lifecycle.
type AmmPositionEvent struct {
	Base
	PositionID string          `json:"position_id"`
	PoolPair   string          `json:"pool_pair"`
	OwnerKey0  string          `json:"owner_account_key0"`
	OwnerKey1  string          `json:"owner_account_key1"`
	TickLower  int32           `json:"tick_lower_index"`
	TickUpper  int32           `json:"tick_upper_index"`
	Liquidity  decimal.Decimal `json:"liquidity"`
	Amount0    decimal.Decimal `json:"amount0"`
	Amount1    decimal.Decimal `json:"amount1"`
}

func (e *AmmPositionEvent) Kind() Kind          { return KindAmmPosition }
func (e *AmmPositionEvent) ActionID() string    { return e.PositionID }
func (e *AmmPositionEvent) ProducerKey() string { return e.PoolPair }

func (e *AmmPositionEvent) supported() bool {
	switch e.Op {
	case OpAmmPositionCreate, OpAmmPositionCollectFee, OpAmmPositionClose:
		return true
	default:
		return false
	}
}

func (e *AmmPositionEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindAmmPosition, e.Op)
	}
	if err := requireFields(KindAmmPosition,
		requiredField{"position id", e.PositionID},
	); err != nil {
		return err
	}
	if e.Op == OpAmmPositionCreate {
		if err := requireFields(KindAmmPosition,
			requiredField{"pool pair", e.PoolPair},
			requiredField{"owner account key0", e.OwnerKey0},
			requiredField{"owner account key1", e.OwnerKey1},
		); err != nil {
			return err
		}
		if e.TickLower >= e.TickUpper {
			return fmt.Errorf("amm_position event: tick lower %d must be below tick upper %d", e.TickLower, e.TickUpper)
		}
		if !e.Liquidity.IsPositive() {
			return fmt.Errorf("amm_position event: liquidity must be positive")
		}
	}
	exists, err := reg.AmmPositions.Exists(e.PositionID)
	if err != nil {
		return err
	}
	if e.Op == OpAmmPositionCreate {
		if exists {
			return fmt.Errorf("amm position %s already exists", e.PositionID)
		}
		poolExists, err := reg.AmmPools.Exists(e.PoolPair)
		if err != nil {
			return err
		}
		if !poolExists {
			return fmt.Errorf("amm pool not found: %s", e.PoolPair)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("amm position not found: %s", e.PositionID)
	}
	return nil
}

func (e *AmmPositionEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.AmmPosition, error) {
	position, ok, err := reg.AmmPositions.Get(e.PositionID)
	if err != nil {
		return nil, err
	}
	if ok {
		return position, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("amm position not found: %s", e.PositionID)
	}
	position = domain.NewAmmPosition(e.PositionID)
	position.PoolPair = e.PoolPair
	position.OwnerKey0 = e.OwnerKey0
	position.OwnerKey1 = e.OwnerKey1
	position.TickLower = e.TickLower
	position.TickUpper = e.TickUpper
	position.Liquidity = e.Liquidity
	position.Amount0 = e.Amount0
	position.Amount1 = e.Amount1
	position.Amount0Init = e.Amount0
	position.Amount1Init = e.Amount1
	return position, nil
}

// AmmOrderEvent drives swap order submission. Orders are create-once.
type AmmOrderEvent struct {
	Base
	OrderID         string          `json:"order_id"`
	PoolPair        string          `json:"pool_pair"`
	OwnerKey0       string          `json:"owner_account_key0"`
	OwnerKey1       string          `json:"owner_account_key1"`
	ZeroForOne      bool            `json:"zero_for_one"`
	AmountSpecified decimal.Decimal `json:"amount_specified"`
	Slippage        decimal.Decimal `json:"slippage"`
}

func (e *AmmOrderEvent) Kind() Kind          { return KindAmmOrder }
func (e *AmmOrderEvent) ActionID() string    { return e.OrderID }
func (e *AmmOrderEvent) ProducerKey() string { return e.PoolPair }

func (e *AmmOrderEvent) supported() bool {
	return e.Op == OpAmmOrderCreate
}

func (e *AmmOrderEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindAmmOrder, e.Op)
	}
	if err := requireFields(KindAmmOrder,
		requiredField{"order id", e.OrderID},
		requiredField{"pool pair", e.PoolPair},
		requiredField{"owner account key0", e.OwnerKey0},
		requiredField{"owner account key1", e.OwnerKey1},
	); err != nil {
		return err
	}
	if !e.AmountSpecified.IsPositive() {
		return fmt.Errorf("amm_order event: amount specified must be positive")
	}
	if e.Slippage.IsNegative() {
		return fmt.Errorf("amm_order event: slippage must not be negative")
	}
	exists, err := reg.AmmOrders.Exists(e.OrderID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("amm order %s already exists", e.OrderID)
	}
	poolExists, err := reg.AmmPools.Exists(e.PoolPair)
	if err != nil {
		return err
	}
	if !poolExists {
		return fmt.Errorf("amm pool not found: %s", e.PoolPair)
	}
	return nil
}

func (e *AmmOrderEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.AmmOrder, error) {
	order, ok, err := reg.AmmOrders.Get(e.OrderID)
	if err != nil {
		return nil, err
	}
	if ok {
		return order, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("amm order not found: %s", e.OrderID)
	}
	order = domain.NewAmmOrder(e.OrderID)
	order.PoolPair = e.PoolPair
	order.OwnerKey0 = e.OwnerKey0
	order.OwnerKey1 = e.OwnerKey1
	order.ZeroForOne = e.ZeroForOne
	order.AmountSpecified = e.AmountSpecified
	order.Slippage = e.Slippage
	return order, nil
}

// TickQueryEvent is a read-only request for the active tick positions of a
// pool, answered from the bitmap index.
type TickQueryEvent struct {
	Base
	PoolPair string `json:"pool_pair"`
}

func (e *TickQueryEvent) Kind() Kind          { return KindTickQuery }
func (e *TickQueryEvent) ActionID() string    { return e.PoolPair }
func (e *TickQueryEvent) ProducerKey() string { return e.PoolPair }

func (e *TickQueryEvent) Validate(reg *cache.Registry) error {
	if e.Op != OpTickQuery {
		return unsupportedOperation(KindTickQuery, e.Op)
	}
	return requireFields(KindTickQuery,
		requiredField{"pool pair", e.PoolPair},
	)
}

// Resolve returns the pool's bitmap, or an empty placeholder when the pool
// has no index yet.
func (e *TickQueryEvent) Resolve(reg *cache.Registry) (*domain.TickBitmap, error) {
	bitmap, ok, err := reg.TickBitmaps.Get(e.PoolPair)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.NewTickBitmap(e.PoolPair), nil
	}
	return bitmap, nil
}
