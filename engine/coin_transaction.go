package engine

import (
	"fmt"

	"exchcore/cache"
	"exchcore/domain"
	"exchcore/event"
)

// DepositEngine processes the coin deposit lifecycle.
type DepositEngine struct {
	base
}

func NewDepositEngine(reg *cache.Registry) *DepositEngine {
	return &DepositEngine{base: newBase(reg)}
}

func (e *DepositEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *DepositEngine) Process(ev *event.CoinDepositEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpCoinDepositCreate:
		return e.create(ev)
	case event.OpCoinDepositProcess:
		return e.process(ev)
	case event.OpCoinDepositFail:
		return e.fail(ev)
	default:
		return failure(nil, fmt.Errorf("coin_deposit event: unsupported operation %q", ev.Op))
	}
}

func (e *DepositEngine) create(ev *event.CoinDepositEvent) Result {
	deposit, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	deposit.Status = domain.TxStatusPending
	deposit.CreatedAt = e.now()
	deposit.UpdatedAt = deposit.CreatedAt
	if err := deposit.Validate(); err != nil {
		return failure(deposit, err)
	}
	if err := e.reg.CoinDeposits.Update(deposit); err != nil {
		return failure(deposit, err)
	}
	return success(deposit)
}

// process credits the deposit's account and completes the record in the same
// pipeline step.
func (e *DepositEngine) process(ev *event.CoinDepositEvent) Result {
	deposit, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if deposit.Status.Terminal() {
		return failure(deposit, fmt.Errorf("coin deposit %s is already %s", deposit.ID, deposit.Status))
	}
	account, err := e.reg.Accounts.GetOrCreate(deposit.AccountKey)
	if err != nil {
		return failure(deposit, err)
	}
	if account.Coin == "" {
		account.Coin = deposit.Coin
	}
	if err := account.Credit(deposit.CreditedAmount()); err != nil {
		return failure(deposit, err)
	}
	account.UpdatedAt = e.now()
	deposit.Status = domain.TxStatusCompleted
	deposit.UpdatedAt = account.UpdatedAt
	if err := e.reg.Accounts.Update(account); err != nil {
		return failure(deposit, err)
	}
	if err := e.reg.CoinDeposits.Update(deposit); err != nil {
		return failure(deposit, err)
	}
	return success(deposit)
}

func (e *DepositEngine) fail(ev *event.CoinDepositEvent) Result {
	deposit, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if deposit.Status.Terminal() {
		return failure(deposit, fmt.Errorf("coin deposit %s is already %s", deposit.ID, deposit.Status))
	}
	deposit.Status = domain.TxStatusFailed
	deposit.UpdatedAt = e.now()
	if err := e.reg.CoinDeposits.Update(deposit); err != nil {
		return failure(deposit, err)
	}
	return success(deposit)
}

// WithdrawalEngine processes the coin withdrawal lifecycle. The withdrawal
// amount plus fee stays frozen on the account from CREATE until the terminal
// transition.
type WithdrawalEngine struct {
	base
}

func NewWithdrawalEngine(reg *cache.Registry) *WithdrawalEngine {
	return &WithdrawalEngine{base: newBase(reg)}
}

func (e *WithdrawalEngine) SetNowFunc(now func() int64) { e.setNowFunc(now) }

func (e *WithdrawalEngine) Process(ev *event.CoinWithdrawalEvent) Result {
	if err := ev.Validate(e.reg); err != nil {
		return failure(nil, err)
	}
	switch ev.Op {
	case event.OpCoinWithdrawalCreate:
		return e.create(ev)
	case event.OpCoinWithdrawalProcess:
		return e.advance(ev)
	case event.OpCoinWithdrawalRelease:
		return e.release(ev)
	case event.OpCoinWithdrawalFail:
		return e.rollback(ev, domain.TxStatusFailed)
	case event.OpCoinWithdrawalCancel:
		return e.rollback(ev, domain.TxStatusCancelled)
	default:
		return failure(nil, fmt.Errorf("coin_withdrawal event: unsupported operation %q", ev.Op))
	}
}

func (e *WithdrawalEngine) create(ev *event.CoinWithdrawalEvent) Result {
	withdrawal, err := ev.ResolveOrCreate(e.reg, false)
	if err != nil {
		return failure(nil, err)
	}
	withdrawal.Status = domain.TxStatusPending
	withdrawal.CreatedAt = e.now()
	withdrawal.UpdatedAt = withdrawal.CreatedAt
	if err := withdrawal.Validate(); err != nil {
		return failure(withdrawal, err)
	}
	account, err := e.reg.Accounts.GetOrCreate(withdrawal.AccountKey)
	if err != nil {
		return failure(withdrawal, err)
	}
	if err := account.Freeze(withdrawal.FrozenAmount()); err != nil {
		return failure(withdrawal, err)
	}
	account.UpdatedAt = withdrawal.CreatedAt
	if err := e.reg.Accounts.Update(account); err != nil {
		return failure(withdrawal, err)
	}
	if err := e.reg.CoinWithdrawals.Update(withdrawal); err != nil {
		return failure(withdrawal, err)
	}
	return success(withdrawal)
}

// advance moves the withdrawal one step along
// pending -> processing -> releasing.
func (e *WithdrawalEngine) advance(ev *event.CoinWithdrawalEvent) Result {
	withdrawal, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	switch withdrawal.Status {
	case domain.TxStatusPending:
		withdrawal.Status = domain.TxStatusProcessing
	case domain.TxStatusProcessing:
		withdrawal.Status = domain.TxStatusReleasing
	default:
		return failure(withdrawal, fmt.Errorf("coin withdrawal %s: cannot process from %s", withdrawal.ID, withdrawal.Status))
	}
	withdrawal.UpdatedAt = e.now()
	if err := e.reg.CoinWithdrawals.Update(withdrawal); err != nil {
		return failure(withdrawal, err)
	}
	return success(withdrawal)
}

// release burns the frozen amount and completes the withdrawal.
func (e *WithdrawalEngine) release(ev *event.CoinWithdrawalEvent) Result {
	withdrawal, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if withdrawal.Status != domain.TxStatusProcessing && withdrawal.Status != domain.TxStatusReleasing {
		return failure(withdrawal, fmt.Errorf("coin withdrawal %s: cannot release from %s", withdrawal.ID, withdrawal.Status))
	}
	account, err := e.reg.Accounts.GetOrCreate(withdrawal.AccountKey)
	if err != nil {
		return failure(withdrawal, err)
	}
	if err := account.BurnFrozen(withdrawal.FrozenAmount()); err != nil {
		return failure(withdrawal, err)
	}
	account.UpdatedAt = e.now()
	withdrawal.Status = domain.TxStatusCompleted
	withdrawal.UpdatedAt = account.UpdatedAt
	if err := e.reg.Accounts.Update(account); err != nil {
		return failure(withdrawal, err)
	}
	if err := e.reg.CoinWithdrawals.Update(withdrawal); err != nil {
		return failure(withdrawal, err)
	}
	return success(withdrawal)
}

// rollback returns the frozen funds and stamps the terminal status.
func (e *WithdrawalEngine) rollback(ev *event.CoinWithdrawalEvent, to domain.TxStatus) Result {
	withdrawal, err := ev.ResolveOrCreate(e.reg, true)
	if err != nil {
		return failure(nil, err)
	}
	if withdrawal.Status.Terminal() {
		return failure(withdrawal, fmt.Errorf("coin withdrawal %s is already %s", withdrawal.ID, withdrawal.Status))
	}
	if to == domain.TxStatusCancelled && withdrawal.Status != domain.TxStatusPending {
		return failure(withdrawal, fmt.Errorf("coin withdrawal %s: only pending withdrawals can be cancelled", withdrawal.ID))
	}
	account, err := e.reg.Accounts.GetOrCreate(withdrawal.AccountKey)
	if err != nil {
		return failure(withdrawal, err)
	}
	if err := account.Unfreeze(withdrawal.FrozenAmount()); err != nil {
		return failure(withdrawal, err)
	}
	account.UpdatedAt = e.now()
	withdrawal.Status = to
	withdrawal.UpdatedAt = account.UpdatedAt
	if err := e.reg.Accounts.Update(account); err != nil {
		return failure(withdrawal, err)
	}
	if err := e.reg.CoinWithdrawals.Update(withdrawal); err != nil {
		return failure(withdrawal, err)
	}
	return success(withdrawal)
}
