package event

import (
	"fmt"

	"github.com/shopspring/decimal"

	"exchcore/cache"
	"exchcore/domain"
)

// OfferEvent drives the P2P offer lifecycle.
type OfferEvent struct {
	Base
	OfferID         string          `json:"offer_id"`
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
}

func (e *OfferEvent) Kind() Kind          { return KindOffer }
func (e *OfferEvent) ActionID() string    { return e.OfferID }
func (e *OfferEvent) ProducerKey() string { return e.OfferID }

func (e *OfferEvent) supported() bool {
	switch e.Op {
	case OpOfferCreate, OpOfferUpdate, OpOfferDisable, OpOfferEnable, OpOfferDelete:
		return true
	default:
		return false
	}
}

// Validate runs the structural checks first, then the cache-backed existence
// checks for the operation.
func (e *OfferEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindOffer, e.Op)
	}
	if err := requireFields(KindOffer,
		requiredField{"offer id", e.OfferID},
	); err != nil {
		return err
	}
	if e.Op == OpOfferCreate || e.Op == OpOfferUpdate {
		if err := requireFields(KindOffer,
			requiredField{"user id", e.UserID},
			requiredField{"coin currency", e.CoinCurrency},
			requiredField{"currency", e.Currency},
		); err != nil {
			return err
		}
		if !e.Price.IsPositive() {
			return fmt.Errorf("offer event: price must be positive")
		}
		if !e.TotalAmount.IsPositive() {
			return fmt.Errorf("offer event: total amount must be positive")
		}
	}
	exists, err := reg.Offers.Exists(e.OfferID)
	if err != nil {
		return err
	}
	if e.Op == OpOfferCreate {
		if exists {
			return fmt.Errorf("offer %s already exists", e.OfferID)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("offer not found: %s", e.OfferID)
	}
	return nil
}

// ResolveOrCreate loads the offer, failing fast when failIfMissing is set and
// the record is absent. On the create path it synthesizes a new offer from
// the event fields with availableAmount seeded to totalAmount.
func (e *OfferEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.Offer, error) {
	offer, ok, err := reg.Offers.Get(e.OfferID)
	if err != nil {
		return nil, err
	}
	if ok {
		return offer, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("offer not found: %s", e.OfferID)
	}
	offer = domain.NewOffer(e.OfferID)
	e.Apply(offer)
	offer.AvailableAmount = e.TotalAmount
	return offer, nil
}

// Apply overwrites the offer's mutable fields from the event.
func (e *OfferEvent) Apply(offer *domain.Offer) {
	offer.UserID = e.UserID
	offer.OfferType = e.OfferType
	offer.CoinCurrency = e.CoinCurrency
	offer.Currency = e.Currency
	offer.Price = e.Price
	offer.MinAmount = e.MinAmount
	offer.MaxAmount = e.MaxAmount
	offer.TotalAmount = e.TotalAmount
	offer.AvailableAmount = e.AvailableAmount
	offer.PaymentMethodID = e.PaymentMethodID
	offer.PaymentTime = e.PaymentTime
	offer.CountryCode = e.CountryCode
	offer.Margin = e.Margin
	offer.Automatic = e.Automatic
	offer.Online = e.Online
}
