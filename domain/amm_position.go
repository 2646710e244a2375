package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PositionStatus is the lifecycle state of an AMM position.
type PositionStatus string

const (
	PositionStatusPending PositionStatus = "pending"
	PositionStatusOpen    PositionStatus = "open"
	PositionStatusClosed  PositionStatus = "closed"
	PositionStatusError   PositionStatus = "error"
)

func (s PositionStatus) Valid() bool {
	switch s {
	case PositionStatusPending, PositionStatusOpen, PositionStatusClosed, PositionStatusError:
		return true
	default:
		return false
	}
}

// AmmPosition is a concentrated-liquidity position over the tick range
// [TickLower, TickUpper) of one pool, funded from two owner accounts.
type AmmPosition struct {
	ID           string          `json:"id"`
	PoolPair     string          `json:"pool_pair"`
	OwnerKey0    string          `json:"owner_account_key0"`
	OwnerKey1    string          `json:"owner_account_key1"`
	TickLower    int32           `json:"tick_lower_index"`
	TickUpper    int32           `json:"tick_upper_index"`
	Liquidity    decimal.Decimal `json:"liquidity"`
	Amount0      decimal.Decimal `json:"amount0"`
	Amount1      decimal.Decimal `json:"amount1"`
	Amount0Init  decimal.Decimal `json:"amount0_initial"`
	Amount1Init  decimal.Decimal `json:"amount1_initial"`
	FeeCollected decimal.Decimal `json:"fee_collected"`
	Status       PositionStatus  `json:"status"`
	CreatedAt    int64           `json:"created_at"`
	UpdatedAt    int64           `json:"updated_at"`
}

func NewAmmPosition(id string) *AmmPosition {
	return &AmmPosition{ID: id, Status: PositionStatusPending}
}

func (p *AmmPosition) Key() string { return p.ID }

func (p *AmmPosition) Clone() *AmmPosition {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Validate checks the position's structural and numeric invariants against
// the pool's tick spacing.
func (p *AmmPosition) Validate(tickSpacing int32) error {
	if p.ID == "" {
		return fmt.Errorf("amm position: identifier is required")
	}
	if p.PoolPair == "" {
		return fmt.Errorf("amm position %s: pool pair is required", p.ID)
	}
	if p.OwnerKey0 == "" || p.OwnerKey1 == "" {
		return fmt.Errorf("amm position %s: both owner account keys are required", p.ID)
	}
	if p.TickLower >= p.TickUpper {
		return fmt.Errorf("amm position %s: tick lower %d must be below tick upper %d", p.ID, p.TickLower, p.TickUpper)
	}
	if tickSpacing > 0 {
		if p.TickLower%tickSpacing != 0 || p.TickUpper%tickSpacing != 0 {
			return fmt.Errorf("amm position %s: tick range must align to spacing %d", p.ID, tickSpacing)
		}
	}
	if !p.Liquidity.IsPositive() {
		return fmt.Errorf("amm position %s: liquidity must be positive", p.ID)
	}
	if p.Amount0Init.IsNegative() || p.Amount1Init.IsNegative() {
		return fmt.Errorf("amm position %s: initial amounts must not be negative", p.ID)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("amm position %s: invalid status %q", p.ID, p.Status)
	}
	return nil
}
