package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmmPool is one concentrated-liquidity pool, keyed by its trading pair.
type AmmPool struct {
	Pair                  string          `json:"pair"`
	Token0                string          `json:"token0"`
	Token1                string          `json:"token1"`
	TickSpacing           int32           `json:"tick_spacing"`
	FeePercentage         decimal.Decimal `json:"fee_percentage"`
	ProtocolFeePercentage decimal.Decimal `json:"protocol_fee_percentage"`
	CurrentTick           int32           `json:"current_tick"`
	Price                 decimal.Decimal `json:"price"`
	InitPrice             decimal.Decimal `json:"init_price"`
	TotalValueLocked0     decimal.Decimal `json:"total_value_locked_token0"`
	TotalValueLocked1     decimal.Decimal `json:"total_value_locked_token1"`
	Liquidity             decimal.Decimal `json:"liquidity"`
	Active                bool            `json:"is_active"`
	CreatedAt             int64           `json:"created_at"`
	UpdatedAt             int64           `json:"updated_at"`
}

func NewAmmPool(pair string) *AmmPool {
	return &AmmPool{Pair: pair}
}

func (p *AmmPool) Key() string { return p.Pair }

func (p *AmmPool) Clone() *AmmPool {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// HasLiquidity reports whether any value is locked in the pool.
func (p *AmmPool) HasLiquidity() bool {
	return p.TotalValueLocked0.IsPositive() || p.TotalValueLocked1.IsPositive()
}

// Validate checks the pool's structural and numeric invariants.
func (p *AmmPool) Validate() error {
	if p.Pair == "" {
		return fmt.Errorf("amm pool: pair is required")
	}
	if p.Token0 == "" || p.Token1 == "" {
		return fmt.Errorf("amm pool %s: token0 and token1 are required", p.Pair)
	}
	if p.Token0 == p.Token1 {
		return fmt.Errorf("amm pool %s: token0 and token1 must differ", p.Pair)
	}
	if p.TickSpacing <= 0 {
		return fmt.Errorf("amm pool %s: tick spacing must be positive", p.Pair)
	}
	if p.FeePercentage.IsNegative() {
		return fmt.Errorf("amm pool %s: fee percentage must not be negative", p.Pair)
	}
	if p.ProtocolFeePercentage.IsNegative() {
		return fmt.Errorf("amm pool %s: protocol fee percentage must not be negative", p.Pair)
	}
	if p.TotalValueLocked0.IsNegative() || p.TotalValueLocked1.IsNegative() {
		return fmt.Errorf("amm pool %s: total value locked must not be negative", p.Pair)
	}
	return nil
}

// SetInitPrice stores the initial price. Only an inactive pool with zero
// total value locked may have its price seeded.
func (p *AmmPool) SetInitPrice(price decimal.Decimal) error {
	if p.Active {
		return fmt.Errorf("amm pool %s: cannot set init price on an active pool", p.Pair)
	}
	if p.HasLiquidity() {
		return fmt.Errorf("amm pool %s: cannot set init price while liquidity is locked", p.Pair)
	}
	if !price.IsPositive() {
		return fmt.Errorf("amm pool %s: init price must be positive", p.Pair)
	}
	p.InitPrice = price
	p.Price = price
	return nil
}
