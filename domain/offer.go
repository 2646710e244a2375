package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Offer is a P2P buy/sell listing. deleted is terminal; availableAmount never
// exceeds totalAmount.
type Offer struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	OfferType       string          `json:"offer_type"`
	CoinCurrency    string          `json:"coin_currency"`
	Currency        string          `json:"currency"`
	Price           decimal.Decimal `json:"price"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AvailableAmount decimal.Decimal `json:"available_amount"`
	PaymentMethodID string          `json:"payment_method_id"`
	PaymentTime     int64           `json:"payment_time"`
	CountryCode     string          `json:"country_code"`
	Margin          decimal.Decimal `json:"margin"`
	Automatic       bool            `json:"automatic"`
	Online          bool            `json:"online"`
	Disabled        bool            `json:"disabled"`
	Deleted         bool            `json:"deleted"`
	CreatedAt       int64           `json:"created_at"`
	UpdatedAt       int64           `json:"updated_at"`
}

func NewOffer(id string) *Offer {
	return &Offer{ID: id}
}

func (o *Offer) Key() string { return o.ID }

func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// Validate checks the offer's structural and numeric invariants.
func (o *Offer) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("offer: identifier is required")
	}
	if o.UserID == "" {
		return fmt.Errorf("offer %s: user id is required", o.ID)
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("offer %s: price must be positive", o.ID)
	}
	if !o.TotalAmount.IsPositive() {
		return fmt.Errorf("offer %s: total amount must be positive", o.ID)
	}
	if o.AvailableAmount.IsNegative() {
		return fmt.Errorf("offer %s: available amount must not be negative", o.ID)
	}
	if o.AvailableAmount.GreaterThan(o.TotalAmount) {
		return fmt.Errorf("offer %s: available amount %s exceeds total amount %s", o.ID, o.AvailableAmount, o.TotalAmount)
	}
	if o.MinAmount.IsNegative() || o.MaxAmount.IsNegative() {
		return fmt.Errorf("offer %s: min and max amounts must not be negative", o.ID)
	}
	if o.MaxAmount.IsPositive() && o.MinAmount.GreaterThan(o.MaxAmount) {
		return fmt.Errorf("offer %s: min amount %s exceeds max amount %s", o.ID, o.MinAmount, o.MaxAmount)
	}
	return nil
}
