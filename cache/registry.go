package cache

import (
	"sync"

	"exchcore/domain"
	"exchcore/storage"
)

// Store partition names, one per entity type.
const (
	PartitionAccounts        = "accounts"
	PartitionCoinDeposits    = "coin_deposits"
	PartitionCoinWithdrawals = "coin_withdrawals"
	PartitionAmmPools        = "amm_pools"
	PartitionTicks           = "ticks"
	PartitionTickBitmaps     = "tick_bitmaps"
	PartitionAmmPositions    = "amm_positions"
	PartitionAmmOrders       = "amm_orders"
	PartitionBalanceLocks    = "balance_locks"
	PartitionOffers          = "offers"
	PartitionTrades          = "trades"
	PartitionMerchantEscrows = "merchant_escrows"
)

// Registry bundles one cache per entity type. Engines receive a registry by
// injection; a process-wide default is kept for deployments that need an
// ambient singleton and can be overridden in tests.
type Registry struct {
	Accounts        *Cache[*domain.Account]
	CoinDeposits    *Cache[*domain.CoinDeposit]
	CoinWithdrawals *Cache[*domain.CoinWithdrawal]
	AmmPools        *Cache[*domain.AmmPool]
	Ticks           *Cache[*domain.Tick]
	TickBitmaps     *Cache[*domain.TickBitmap]
	AmmPositions    *Cache[*domain.AmmPosition]
	AmmOrders       *Cache[*domain.AmmOrder]
	BalanceLocks    *Cache[*domain.BalanceLock]
	Offers          *Cache[*domain.Offer]
	Trades          *Cache[*domain.Trade]
	MerchantEscrows *Cache[*domain.MerchantEscrow]
}

// NewRegistry builds all entity caches over the supplied store.
func NewRegistry(store *storage.Store) *Registry {
	return &Registry{
		Accounts:        New(store, PartitionAccounts, domain.NewAccount),
		CoinDeposits:    New(store, PartitionCoinDeposits, domain.NewCoinDeposit),
		CoinWithdrawals: New(store, PartitionCoinWithdrawals, domain.NewCoinWithdrawal),
		AmmPools:        New(store, PartitionAmmPools, domain.NewAmmPool),
		Ticks:           New(store, PartitionTicks, domain.NewTick),
		TickBitmaps:     New(store, PartitionTickBitmaps, domain.NewTickBitmap),
		AmmPositions:    New(store, PartitionAmmPositions, domain.NewAmmPosition),
		AmmOrders:       New(store, PartitionAmmOrders, domain.NewAmmOrder),
		BalanceLocks:    New(store, PartitionBalanceLocks, domain.NewBalanceLock),
		Offers:          New(store, PartitionOffers, domain.NewOffer),
		Trades:          New(store, PartitionTrades, domain.NewTrade),
		MerchantEscrows: New(store, PartitionMerchantEscrows, domain.NewMerchantEscrow),
	}
}

// Reset drops the memoized entries of every cache.
func (r *Registry) Reset() {
	r.Accounts.Reset()
	r.CoinDeposits.Reset()
	r.CoinWithdrawals.Reset()
	r.AmmPools.Reset()
	r.Ticks.Reset()
	r.TickBitmaps.Reset()
	r.AmmPositions.Reset()
	r.AmmOrders.Reset()
	r.BalanceLocks.Reset()
	r.Offers.Reset()
	r.Trades.Reset()
	r.MerchantEscrows.Reset()
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// SetDefault installs the process-wide registry. Tests install a registry
// backed by an in-memory store and call ResetDefault when done.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defaultRegistry = r
	defaultMu.Unlock()
}

// Default returns the process-wide registry, or nil when none is installed.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry
}

// ResetDefault removes the process-wide registry.
func ResetDefault() {
	SetDefault(nil)
}
