package event

import (
	"fmt"

	"github.com/shopspring/decimal"

	"exchcore/cache"
	"exchcore/domain"
)

// CoinDepositEvent drives the deposit lifecycle: CREATE records the pending
// deposit, PROCESS credits the account, FAIL aborts it.
type CoinDepositEvent struct {
	Base
	DepositID  string          `json:"deposit_id"`
	AccountKey string          `json:"account_key"`
	Coin       string          `json:"coin"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	TxHash     string          `json:"tx_hash"`
	Address    string          `json:"address"`
	ChainLayer string          `json:"chain_layer"`
}

func (e *CoinDepositEvent) Kind() Kind          { return KindCoinDeposit }
func (e *CoinDepositEvent) ActionID() string    { return e.DepositID }
func (e *CoinDepositEvent) ProducerKey() string { return e.AccountKey }

func (e *CoinDepositEvent) supported() bool {
	switch e.Op {
	case OpCoinDepositCreate, OpCoinDepositProcess, OpCoinDepositFail:
		return true
	default:
		return false
	}
}

func (e *CoinDepositEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindCoinDeposit, e.Op)
	}
	if err := requireFields(KindCoinDeposit,
		requiredField{"deposit id", e.DepositID},
	); err != nil {
		return err
	}
	if e.Op == OpCoinDepositCreate {
		if err := requireFields(KindCoinDeposit,
			requiredField{"account key", e.AccountKey},
			requiredField{"coin", e.Coin},
		); err != nil {
			return err
		}
		if !e.Amount.IsPositive() {
			return fmt.Errorf("coin_deposit event: amount must be positive")
		}
		if e.Fee.IsNegative() {
			return fmt.Errorf("coin_deposit event: fee must not be negative")
		}
	}
	exists, err := reg.CoinDeposits.Exists(e.DepositID)
	if err != nil {
		return err
	}
	if e.Op == OpCoinDepositCreate {
		if exists {
			return fmt.Errorf("coin deposit %s already exists", e.DepositID)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("coin deposit not found: %s", e.DepositID)
	}
	return nil
}

func (e *CoinDepositEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.CoinDeposit, error) {
	deposit, ok, err := reg.CoinDeposits.Get(e.DepositID)
	if err != nil {
		return nil, err
	}
	if ok {
		return deposit, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("coin deposit not found: %s", e.DepositID)
	}
	deposit = domain.NewCoinDeposit(e.DepositID)
	deposit.AccountKey = e.AccountKey
	deposit.Coin = e.Coin
	deposit.Amount = e.Amount
	deposit.Fee = e.Fee
	deposit.TxHash = e.TxHash
	deposit.Address = e.Address
	deposit.ChainLayer = e.ChainLayer
	return deposit, nil
}

// CoinWithdrawalEvent drives the withdrawal lifecycle: CREATE freezes
// amount+fee, PROCESS marks it in flight, RELEASE burns the frozen funds,
// FAIL and CANCEL return them.
type CoinWithdrawalEvent struct {
	Base
	WithdrawalID string          `json:"withdrawal_id"`
	AccountKey   string          `json:"account_key"`
	Coin         string          `json:"coin"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	Address      string          `json:"address"`
	ChainLayer   string          `json:"chain_layer"`
}

func (e *CoinWithdrawalEvent) Kind() Kind          { return KindCoinWithdrawal }
func (e *CoinWithdrawalEvent) ActionID() string    { return e.WithdrawalID }
func (e *CoinWithdrawalEvent) ProducerKey() string { return e.AccountKey }

func (e *CoinWithdrawalEvent) supported() bool {
	switch e.Op {
	case OpCoinWithdrawalCreate, OpCoinWithdrawalProcess, OpCoinWithdrawalRelease,
		OpCoinWithdrawalFail, OpCoinWithdrawalCancel:
		return true
	default:
		return false
	}
}

func (e *CoinWithdrawalEvent) Validate(reg *cache.Registry) error {
	if !e.supported() {
		return unsupportedOperation(KindCoinWithdrawal, e.Op)
	}
	if err := requireFields(KindCoinWithdrawal,
		requiredField{"withdrawal id", e.WithdrawalID},
	); err != nil {
		return err
	}
	if e.Op == OpCoinWithdrawalCreate {
		if err := requireFields(KindCoinWithdrawal,
			requiredField{"account key", e.AccountKey},
			requiredField{"coin", e.Coin},
			requiredField{"address", e.Address},
		); err != nil {
			return err
		}
		if !e.Amount.IsPositive() {
			return fmt.Errorf("coin_withdrawal event: amount must be positive")
		}
		if e.Fee.IsNegative() {
			return fmt.Errorf("coin_withdrawal event: fee must not be negative")
		}
	}
	exists, err := reg.CoinWithdrawals.Exists(e.WithdrawalID)
	if err != nil {
		return err
	}
	if e.Op == OpCoinWithdrawalCreate {
		if exists {
			return fmt.Errorf("coin withdrawal %s already exists", e.WithdrawalID)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("coin withdrawal not found: %s", e.WithdrawalID)
	}
	return nil
}

func (e *CoinWithdrawalEvent) ResolveOrCreate(reg *cache.Registry, failIfMissing bool) (*domain.CoinWithdrawal, error) {
	withdrawal, ok, err := reg.CoinWithdrawals.Get(e.WithdrawalID)
	if err != nil {
		return nil, err
	}
	if ok {
		return withdrawal, nil
	}
	if failIfMissing {
		return nil, fmt.Errorf("coin withdrawal not found: %s", e.WithdrawalID)
	}
	withdrawal = domain.NewCoinWithdrawal(e.WithdrawalID)
	withdrawal.AccountKey = e.AccountKey
	withdrawal.Coin = e.Coin
	withdrawal.Amount = e.Amount
	withdrawal.Fee = e.Fee
	withdrawal.Address = e.Address
	withdrawal.ChainLayer = e.ChainLayer
	return withdrawal, nil
}
