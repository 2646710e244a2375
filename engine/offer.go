package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
)

// OfferEngine processes the P2P offer lifecycle.
type OfferEngine struct {
	base
}

func NewOfferEngine(reg *cache.Registry) *OfferEngine {
	return &OfferEngine{base: newBase(reg)}
}

// SetNowFunc overrides the time source, primarily used in tests.
func (e *OfferEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *OfferEngine) Process(ev *event.OfferEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpOfferCreate:
		return e.create(ev)
	case event.OpOfferUpdate:
		return e.update(ev)
	case event.OpOfferDisable:
		return e.disable(ev)
	case event.OpOfferEnable:
		return e.enable(ev)
	case event.OpOfferDelete:
		return e.delete(ev)
	default:
		return failure(nil, fmt.Errorf("offer event: unsupported operation %q", ev.Op))
	}
}

func (e *OfferEngine) create(ev *event.OfferEvent) Result {
	offer, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	offer.Disabled = false
	offer.Deleted = false
	offer.AvailableAmount = offer.TotalAmount
	offer.CreatedAt = e.now()
	offer.UpdatedAt = offer.CreatedAt
	if err := offer.Validate(); err != nil {
		return failure(offer, err)
	}
	if err := e.reg.Offers.Update(offer); err != nil {
		// persistence failed: record a disabled placeholder so the
		// result always carries an entity
		placeholder := domain.NewOffer(ev.OfferID)
		placeholder.Disabled = true
		placeholder.CreatedAt = offer.CreatedAt
		placeholder.UpdatedAt = offer.CreatedAt
		_ = e.reg.Offers.Update(placeholder)
		return failure(placeholder, err)
	}
	return success(offer)
}

func (e *OfferEngine) update(ev *event.OfferEvent) Result {
	offer, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if offer.Disabled || offer.Deleted {
		return failure(offer, fmt.Errorf("offer %s is disabled or deleted", offer.ID))
	}
	ev.Apply(offer)
	offer.UpdatedAt = e.now()
	if err := offer.Validate(); err != nil {
		return failure(offer, err)
	}
	if err := e.reg.Offers.Update(offer); err != nil {
		return failure(offer, err)
	}
	return success(offer)
}

func (e *OfferEngine) disable(ev *event.OfferEvent) Result {
	offer, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if offer.Disabled || offer.Deleted {
		return failure(offer, fmt.Errorf("offer %s is already disabled or deleted", offer.ID))
	}
	offer.Disabled = true
	offer.UpdatedAt = e.now()
	if err := e.reg.Offers.Update(offer); err != nil {
		return failure(offer, err)
	}
	return success(offer)
}

func (e *OfferEngine) enable(ev *event.OfferEvent) Result {
	offer, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if offer.Deleted {
		return failure(offer, fmt.Errorf("offer %s is deleted", offer.ID))
	}
	offer.Disabled = false
	offer.UpdatedAt = e.now()
	if err := e.reg.Offers.Update(offer); err != nil {
		return failure(offer, err)
	}
	return success(offer)
}

func (e *OfferEngine) delete(ev *event.OfferEvent) Result {
	offer, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if offer.Deleted {
		return failure(offer, fmt.Errorf("offer %s is already deleted", offer.ID))
	}
	offer.Disabled = true
	offer.Deleted = true
	offer.AvailableAmount = decimal.Zero
	offer.UpdatedAt = e.now()
	if err := e.reg.Offers.Update(offer); err != nil {
		return failure(offer, err)
	}
	return success(offer)
}
