package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
	"exchcore/storage"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *cache.Registry) {
	t.Helper()
	store := storage.NewStore(storage.NewMemDB(), 0)
	reg := cache.NewRegistry(store)
	d := NewDispatcher(reg)
	d.SetNowFunc(func() int64 { return 1_700_000_000 })
	return d, reg
}

// flakyDB fails every put once armed. Batch writes share the same switch.
type flakyDB struct {
	*storage.MemDB
	failPuts bool
}

func (db *flakyDB) Put(key, value []byte) error {
	if db.failPuts {
		return errors.New("simulated write failure")
	}
	return db.MemDB.Put(key, value)
}

func (db *flakyDB) WriteBatch(entries []storage.Entry) error {
	if db.failPuts {
		return errors.New("simulated write failure")
	}
	return db.MemDB.WriteBatch(entries)
}

// partitionFlakyDB fails puts into one store partition, leaving the rest of
// the store writable.
type partitionFlakyDB struct {
	*storage.MemDB
	failPrefix string
}

func (db *partitionFlakyDB) Put(key, value []byte) error {
	if db.failPrefix != "" && strings.HasPrefix(string(key), db.failPrefix) {
		return errors.New("simulated write failure")
	}
	return db.MemDB.Put(key, value)
}

func decp(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func fundAccount(t *testing.T, reg *cache.Registry, key, amount string) {
	t.Helper()
	account, err := reg.Accounts.GetOrCreate(key)
	require.NoError(t, err)
	require.NoError(t, account.Credit(decimal.RequireFromString(amount)))
	require.NoError(t, reg.Accounts.Update(account))
}

func accountOf(t *testing.T, reg *cache.Registry, key string) *domain.Account {
	t.Helper()
	account, ok, err := reg.Accounts.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	return account
}

func createPool(t *testing.T, d *Dispatcher, pair string, spacing int32, active bool) {
	t.Helper()
	res := d.AmmPools.Process(&event.AmmPoolEvent{
		Base:        event.NewBase(event.OpAmmPoolCreate),
		Pair:        pair,
		Token0:      "BTC",
		Token1:      "USDT",
		TickSpacing: spacing,
	})
	require.NoError(t, res.Err)
	if active {
		on := true
		res = d.AmmPools.Process(&event.AmmPoolEvent{
			Base:   event.NewBase(event.OpAmmPoolUpdate),
			Pair:   pair,
			Active: &on,
		})
		require.NoError(t, res.Err)
	}
}
