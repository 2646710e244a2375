package event

import (
	"fmt"

	"github.com/shopspring/decimal"

	"exchcore/cache"
	"exchcore/domain"
)

// TradeEvent drives the P2P trade lifecycle against an offer.
type TradeEvent struct {
	Base
	TradeID          string          `json:"trade_id"`
	OfferID          string          `json:"offer_id"`
	BuyerAccountKey  string          `json:"buyer_account_key"`
	SellerAccountKey string          `json:"seller_account_key"`
	CoinCurrency     string          `json:"coin_currency"`
	FiatCurrency     string          `json:"fiat_currency"`
	CoinAmount       decimal.Decimal `json:"coin_amount"`
	Price            decimal.Decimal `json:"price"`
	FeeRatio         decimal.Decimal `json:"fee_ratio"`
	PaymentProofURL  string          `json:"payment_proof_url"`
}

func (e *TradeEvent) Kind() Kind          { return KindTrade }
func (e *TradeEvent) ActionID() string    { return e.TradeID }
func (e *TradeEvent) ProducerKey() string { return e.TradeID }

func (e *TradeEvent) supported() bool {
	switch e.Op {
	case OpTradeCreate, OpTradeRelease, OpTradeCancel:
		return true
	default:
		return false
	}
}

func (e *TradeEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindTrade, e.Op)
	}
	if err := requireFields(KindTrade,
		requiredField{"trade id", e.TradeID},
	); err != nil {
		return err
	}
	if e.Op == OpTradeCreate {
		if err := requireFields(KindTrade,
			requiredField{"offer id", e.OfferID},
			requiredField{"buyer account key", e.BuyerAccountKey},
			requiredField{"seller account key", e.SellerAccountKey},
		); err != nil {
			return err
		}
		if !e.CoinAmount.IsPositive() {
			return fmt.Errorf("trade event: coin amount must be positive")
		}
		if !e.Price.IsPositive() {
			return fmt.Errorf("trade event: price must be positive")
		}
	}
	exists, err := reg.Trades.Exists(e.TradeID)
	if err != nil {
		return err
	}
	if e.Op == OpTradeCreate {
		if exists {
			return fmt.Errorf("trade %s already exists", e.TradeID)
		}
		offerExists, err := reg.Offers.Exists(e.OfferID)
		if err != nil {
			return err
		}
		if !offerExists {
			return fmt.Errorf("offer not found: %s", e.OfferID)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("trade not found: %s", e.TradeID)
	}
	return nil
}

func (e *TradeEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.Trade, error) {
	trade, ok, err := reg.Trades.Get(e.TradeID)
	if err != nil {
		return nil, err
	}
	if ok {
		return trade, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("trade not found: %s", e.TradeID)
	}
	trade = domain.NewTrade(e.TradeID)
	trade.OfferID = e.OfferID
	trade.BuyerAccountKey = e.BuyerAccountKey
	trade.SellerAccountKey = e.SellerAccountKey
	trade.CoinCurrency = e.CoinCurrency
	trade.FiatCurrency = e.FiatCurrency
	trade.CoinAmount = e.CoinAmount
	trade.Price = e.Price
	// fiat leg is always derived, never taken from the wire
	trade.FiatAmount = e.Price.Mul(e.CoinAmount)
	trade.FeeRatio = e.FeeRatio
	trade.PaymentProofURL = e.PaymentProofURL
	return trade, nil
}
