package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
	"exchcore/storage"
)

func newOfferCreate(t *testing.T, id, total string) *event.OfferEvent {
	t.Helper()
	return &event.OfferEvent{
		Base:         event.NewBase(event.OpOfferCreate),
		OfferID:      id,
		UserID:       "user-1",
		CoinCurrency: "btc",
		Currency:     "usd",
		Price:        dec(t, "45000"),
		TotalAmount:  dec(t, total),
	}
}

func TestOfferCreate(t *testing.T) {
	d, reg := newTestDispatcher(t)

	res := d.Offers.Process(newOfferCreate(t, "offer-1", "10"))
	require.NoError(t, res.Err)
	offer := res.Entity.(*domain.Offer)
	require.Equal(t, "10", offer.AvailableAmount.String())
	require.False(t, offer.Disabled)
	require.False(t, offer.Deleted)

	stored, ok, err := reg.Offers.Get("offer-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, stored.AvailableAmount.Equal(offer.TotalAmount))
}

func TestOfferCreateDuplicateFails(t *testing.T) {
	d, reg := newTestDispatcher(t)

	require.NoError(t, d.Offers.Process(newOfferCreate(t, "offer-1", "10")).Err)

	res := d.Offers.Process(newOfferCreate(t, "offer-1", "99"))
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "already exists")

	// the prior record is untouched
	stored, _, err := reg.Offers.Get("offer-1")
	require.NoError(t, err)
	require.Equal(t, "10", stored.TotalAmount.String())
}

func TestOfferUpdateEnforcesAvailableBelowTotal(t *testing.T) {
	d, _ := newTestDispatcher(t)
	require.NoError(t, d.Offers.Process(newOfferCreate(t, "offer-1", "10")).Err)

	update := newOfferCreate(t, "offer-1", "10")
	update.Op = event.OpOfferUpdate
	update.AvailableAmount = dec(t, "11")
	res := d.Offers.Process(update)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "exceeds total amount")

	update.AvailableAmount = dec(t, "7")
	res = d.Offers.Process(update)
	require.NoError(t, res.Err)
	require.Equal(t, "7", res.Entity.(*domain.Offer).AvailableAmount.String())
}

func TestOfferDisableEnableDelete(t *testing.T) {
	d, _ := newTestDispatcher(t)
	require.NoError(t, d.Offers.Process(newOfferCreate(t, "offer-1", "10")).Err)

	op := func(op event.Operation) Result {
		return d.Offers.Process(&event.OfferEvent{Base: event.NewBase(op), OfferID: "offer-1"})
	}

	require.NoError(t, op(event.OpOfferDisable).Err)

	res := op(event.OpOfferDisable)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "already disabled or deleted")

	require.NoError(t, op(event.OpOfferEnable).Err)

	res = op(event.OpOfferDelete)
	require.NoError(t, res.Err)
	offer := res.Entity.(*domain.Offer)
	require.True(t, offer.Disabled)
	require.True(t, offer.Deleted)
	require.True(t, offer.AvailableAmount.IsZero())

	res = op(event.OpOfferEnable)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "deleted")

	res = op(event.OpOfferDelete)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "already deleted")
}

func TestOfferUpdateMissingFails(t *testing.T) {
	d, _ := newTestDispatcher(t)

	update := newOfferCreate(t, "ghost", "10")
	update.Op = event.OpOfferUpdate
	res := d.Offers.Process(update)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "not found")
}

func TestOfferUnsupportedOperation(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := d.Offers.Process(&event.OfferEvent{
		Base:    event.NewBase(event.Operation("offer_teleport")),
		OfferID: "offer-1",
	})
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "unsupported operation")
}

func TestOfferCreatePersistenceFailureReturnsPlaceholder(t *testing.T) {
	db := &flakyDB{MemDB: storage.NewMemDB()}
	reg := cache.NewRegistry(storage.NewStore(db, 0))
	d := NewDispatcher(reg)
	d.SetNowFunc(func() int64 { return 1_700_000_000 })

	db.failPuts = true
	res := d.Offers.Process(newOfferCreate(t, "offer-1", "10"))
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "simulated write failure")

	// the result still carries an entity: a disabled placeholder
	require.NotNil(t, res.Entity)
	placeholder := res.Entity.(*domain.Offer)
	require.Equal(t, "offer-1", placeholder.ID)
	require.True(t, placeholder.Disabled)
}
