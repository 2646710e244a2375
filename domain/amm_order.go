package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an AMM swap order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusSuccess    OrderStatus = "success"
	OrderStatusError      OrderStatus = "error"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusSuccess, OrderStatusError:
		return true
	default:
		return false
	}
}

// AmmOrder is a swap request against one pool. Orders are create-once: every
// operation after CREATE only moves the status forward.
type AmmOrder struct {
	ID              string          `json:"id"`
	PoolPair        string          `json:"pool_pair"`
	OwnerKey0       string          `json:"owner_account_key0"`
	OwnerKey1       string          `json:"owner_account_key1"`
	ZeroForOne      bool            `json:"zero_for_one"`
	AmountSpecified decimal.Decimal `json:"amount_specified"`
	AmountExecuted  decimal.Decimal `json:"amount_executed"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	Slippage        decimal.Decimal `json:"slippage"`
	Status          OrderStatus     `json:"status"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       int64           `json:"created_at"`
	UpdatedAt       int64           `json:"updated_at"`
}

func NewAmmOrder(id string) *AmmOrder {
	return &AmmOrder{ID: id, Status: OrderStatusPending}
}

func (o *AmmOrder) Key() string { return o.ID }

func (o *AmmOrder) Clone() *AmmOrder {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// Validate checks the order's structural and numeric invariants.
func (o *AmmOrder) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("amm order: identifier is required")
	}
	if o.PoolPair == "" {
		return fmt.Errorf("amm order %s: pool pair is required", o.ID)
	}
	if o.OwnerKey0 == "" || o.OwnerKey1 == "" {
		return fmt.Errorf("amm order %s: both owner account keys are required", o.ID)
	}
	if !o.AmountSpecified.IsPositive() {
		return fmt.Errorf("amm order %s: amount specified must be positive", o.ID)
	}
	if o.Slippage.IsNegative() {
		return fmt.Errorf("amm order %s: slippage must not be negative", o.ID)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("amm order %s: invalid status %q", o.ID, o.Status)
	}
	return nil
}
