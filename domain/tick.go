package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Tick is the liquidity bookkeeping record for one discretized price point of
// a pool. A tick is considered active while its gross liquidity is non-zero;
// the pool's bitmap must mirror that state bit-for-bit.
type Tick struct {
	PoolPair         string          `json:"pool_pair"`
	TickIndex        int32           `json:"tick_index"`
	LiquidityGross   decimal.Decimal `json:"liquidity_gross"`
	LiquidityNet     decimal.Decimal `json:"liquidity_net"`
	FeeGrowthOutside decimal.Decimal `json:"fee_growth_outside"`
	CreatedAt        int64           `json:"created_at"`
	UpdatedAt        int64           `json:"updated_at"`
}

// TickKeyFor builds the composite pool+index key under which a tick is
// stored.
func TickKeyFor(poolPair string, tickIndex int32) string {
	return fmt.Sprintf("%s:%d", poolPair, tickIndex)
}

// ParseTickKey splits a composite tick key back into pool pair and index.
func ParseTickKey(key string) (string, int32, error) {
	sep := strings.LastIndexByte(key, ':')
	if sep < 0 {
		return "", 0, fmt.Errorf("tick: malformed key %q", key)
	}
	idx, err := strconv.ParseInt(key[sep+1:], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("tick: malformed key %q: %w", key, err)
	}
	return key[:sep], int32(idx), nil
}

func NewTick(key string) *Tick {
	t := &Tick{}
	if pool, idx, err := ParseTickKey(key); err == nil {
		t.PoolPair = pool
		t.TickIndex = idx
	}
	return t
}

func (t *Tick) Key() string { return TickKeyFor(t.PoolPair, t.TickIndex) }

func (t *Tick) Clone() *Tick {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

// Active reports whether the tick currently holds liquidity.
func (t *Tick) Active() bool {
	return !t.LiquidityGross.IsZero()
}

// AddLiquidity increases the gross liquidity at this tick. upper positions
// subtract their liquidity from the net, lower positions add it.
func (t *Tick) AddLiquidity(amount decimal.Decimal, upper bool) error {
	if !amount.IsPositive() {
		return fmt.Errorf("tick %s: liquidity delta must be positive", t.Key())
	}
	t.LiquidityGross = t.LiquidityGross.Add(amount)
	if upper {
		t.LiquidityNet = t.LiquidityNet.Sub(amount)
	} else {
		t.LiquidityNet = t.LiquidityNet.Add(amount)
	}
	return nil
}

// RemoveLiquidity decreases the gross liquidity at this tick.
func (t *Tick) RemoveLiquidity(amount decimal.Decimal, upper bool) error {
	if !amount.IsPositive() {
		return fmt.Errorf("tick %s: liquidity delta must be positive", t.Key())
	}
	if t.LiquidityGross.LessThan(amount) {
		return fmt.Errorf("tick %s: liquidity underflow %s < %s", t.Key(), t.LiquidityGross, amount)
	}
	t.LiquidityGross = t.LiquidityGross.Sub(amount)
	if upper {
		t.LiquidityNet = t.LiquidityNet.Add(amount)
	} else {
		t.LiquidityNet = t.LiquidityNet.Sub(amount)
	}
	return nil
}
