package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TradeStatus is the lifecycle state of a P2P trade.
type TradeStatus string

const (
	TradeStatusUnpaid    TradeStatus = "unpaid"
	TradeStatusPaid      TradeStatus = "paid"
	TradeStatusReleased  TradeStatus = "released"
	TradeStatusCancelled TradeStatus = "cancelled"
	TradeStatusDisputed  TradeStatus = "disputed"
)

func (s TradeStatus) Valid() bool {
	switch s {
	case TradeStatusUnpaid, TradeStatusPaid, TradeStatusReleased, TradeStatusCancelled, TradeStatusDisputed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed.
func (s TradeStatus) Terminal() bool {
	return s == TradeStatusReleased || s == TradeStatusCancelled
}

// Trade executes one fill against an offer: the seller's coin is held until
// release, when the buyer receives coin and the seller receives fiat.
// FiatAmount is always price times coin amount.
type Trade struct {
	ID               string          `json:"id"`
	OfferID          string          `json:"offer_id"`
	BuyerAccountKey  string          `json:"buyer_account_key"`
	SellerAccountKey string          `json:"seller_account_key"`
	CoinCurrency     string          `json:"coin_currency"`
	FiatCurrency     string          `json:"fiat_currency"`
	CoinAmount       decimal.Decimal `json:"coin_amount"`
	Price            decimal.Decimal `json:"price"`
	FiatAmount       decimal.Decimal `json:"fiat_amount"`
	FeeRatio         decimal.Decimal `json:"fee_ratio"`
	PaymentProofURL  string          `json:"payment_proof_url,omitempty"`
	Status           TradeStatus     `json:"status"`
	CreatedAt        int64           `json:"created_at"`
	PaidAt           int64           `json:"paid_at,omitempty"`
	ReleasedAt       int64           `json:"released_at,omitempty"`
	UpdatedAt        int64           `json:"updated_at"`
}

func NewTrade(id string) *Trade {
	return &Trade{ID: id, Status: TradeStatusUnpaid}
}

func (t *Trade) Key() string { return t.ID }

func (t *Trade) Clone() *Trade {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

// Validate checks the trade's structural and numeric invariants, including
// the fiat = price * coin identity.
func (t *Trade) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trade: identifier is required")
	}
	if t.OfferID == "" {
		return fmt.Errorf("trade %s: offer id is required", t.ID)
	}
	if t.BuyerAccountKey == "" || t.SellerAccountKey == "" {
		return fmt.Errorf("trade %s: buyer and seller account keys are required", t.ID)
	}
	if t.BuyerAccountKey == t.SellerAccountKey {
		return fmt.Errorf("trade %s: buyer and seller must differ", t.ID)
	}
	if !t.CoinAmount.IsPositive() {
		return fmt.Errorf("trade %s: coin amount must be positive", t.ID)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("trade %s: price must be positive", t.ID)
	}
	if t.FeeRatio.IsNegative() {
		return fmt.Errorf("trade %s: fee ratio must not be negative", t.ID)
	}
	if !t.FiatAmount.Equal(t.Price.Mul(t.CoinAmount)) {
		return fmt.Errorf("trade %s: fiat amount %s does not equal price * coin amount %s", t.ID, t.FiatAmount, t.Price.Mul(t.CoinAmount))
	}
	if !t.Status.Valid() {
		return fmt.Errorf("trade %s: invalid status %q", t.ID, t.Status)
	}
	return nil
}
