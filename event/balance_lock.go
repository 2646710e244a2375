package event

import (
	"fmt"

	"exchcore/cache"
	"exchcore/domain"
)

// BalanceLockEvent drives the multi-account balance lock lifecycle.
type BalanceLockEvent struct {
	Base
	LockID      string   `json:"lock_id"`
	AccountKeys []string `json:"account_keys"`
	Identifier  string   `json:"identifier"`
}

func (e *BalanceLockEvent) Kind() Kind          { return KindBalanceLock }
func (e *BalanceLockEvent) ActionID() string    { return e.LockID }
func (e *BalanceLockEvent) ProducerKey() string { return e.LockID }

func (e *BalanceLockEvent) supported() bool {
	return e.Op == OpBalanceLockCreate || e.Op == OpBalanceLockRelease
}

func (e *BalanceLockEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindBalanceLock, e.Op)
	}
	if err := requireFields(KindBalanceLock,
		requiredField{"lock id", e.LockID},
	); err != nil {
		return err
	}
	if e.Op == OpBalanceLockCreate {
		if len(e.AccountKeys) == 0 {
			return fmt.Errorf("balance_lock event: AccountKeys list is required")
		}
		for _, key := range e.AccountKeys {
			if key == "" {
				return fmt.Errorf("balance_lock event: account keys must not be blank")
			}
		}
	}
	exists, err := reg.BalanceLocks.Exists(e.LockID)
	if err != nil {
		return err
	}
	if e.Op == OpBalanceLockCreate {
		if exists {
			return fmt.Errorf("balance lock %s already exists", e.LockID)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("balance lock not found: %s", e.LockID)
	}
	return nil
}

func (e *BalanceLockEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.BalanceLock, error) {
	lock, ok, err := reg.BalanceLocks.Get(e.LockID)
	if err != nil {
		return nil, err
	}
	if ok {
		return lock, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("balance lock not found: %s", e.LockID)
	}
	lock = domain.NewBalanceLock(e.LockID)
	lock.AccountKeys = append([]string(nil), e.AccountKeys...)
	lock.Identifier = e.Identifier
	return lock, nil
}
