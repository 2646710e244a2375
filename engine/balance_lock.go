package engine

import (
	"fmt"
	"sort"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
)

// BalanceLockEngine processes multi-account balance locks. CREATE freezes the
// full available balance of every listed account under one lock id; RELEASE
// returns the snapshot amounts and flips the same record to RELEASED.
type BalanceLockEngine struct {
	base
}

func NewBalanceLockEngine(reg *cache.Registry) *BalanceLockEngine {
	return &BalanceLockEngine{base: newBase(reg)}
}

func (e *BalanceLockEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *BalanceLockEngine) Process(ev *event.BalanceLockEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpBalanceLockCreate:
		return e.create(ev)
	case event.OpBalanceLockRelease:
		return e.release(ev)
	default:
		return failure(nil, fmt.Errorf("balance_lock event: unsupported operation %q", ev.Op))
	}
}

func (e *BalanceLockEngine) create(ev *event.BalanceLockEvent) Result {
	lock, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	lock.Status = domain.LockStatusLocked
	lock.CreatedAt = e.now()
	lock.UpdatedAt = lock.CreatedAt
	if err := lock.Validate(); err != nil {
		return failure(lock, err)
	}

	// deterministic order so replays touch accounts identically
	keys := append([]string(nil), lock.AccountKeys...)
	sort.Strings(keys)
	for _, key := range keys {
		account, err := e.reg.Accounts.GetOrCreate(key)
		if err != nil {
			return failure(lock, err)
		}
		amount := account.Available
		if !amount.IsPositive() {
			continue
		}
		if err := account.Freeze(amount); err != nil {
			return failure(lock, err)
		}
		account.UpdatedAt = lock.CreatedAt
		if err := e.reg.Accounts.Update(account); err != nil {
			return failure(lock, err)
		}
		lock.LockedBalances[key] = amount
	}
	if err := e.reg.BalanceLocks.Update(lock); err != nil {
		return failure(lock, err)
	}
	return success(lock)
}

func (e *BalanceLockEngine) release(ev *event.BalanceLockEvent) Result {
	lock, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if lock.Status == domain.LockStatusReleased {
		return failure(lock, fmt.Errorf("balance lock %s is already released", lock.LockID))
	}

	keys := make([]string, 0, len(lock.LockedBalances))
	for key := range lock.LockedBalances {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	now := e.now()
	for _, key := range keys {
		amount := lock.LockedBalances[key]
		account, err := e.reg.Accounts.GetOrCreate(key)
		if err != nil {
			return failure(lock, err)
		}
		if err := account.Unfreeze(amount); err != nil {
			return failure(lock, err)
		}
		account.UpdatedAt = now
		if err := e.reg.Accounts.Update(account); err != nil {
			return failure(lock, err)
		}
	}
	lock.Status = domain.LockStatusReleased
	lock.UpdatedAt = now
	if err := e.reg.BalanceLocks.Update(lock); err != nil {
		return failure(lock, err)
	}
	return success(lock)
}
