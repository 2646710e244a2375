// Package event defines the typed business events the engine consumes and
// the envelope that carries exactly one of them through the pipeline.
package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the event variants.
type Kind string

const (
	KindUnknown        Kind = "unknown"
	KindCoinDeposit    Kind = "coin_deposit"
	KindCoinWithdrawal Kind = "coin_withdrawal"
	KindBalanceLock    Kind = "balance_lock"
	KindOffer          Kind = "offer"
	KindTrade          Kind = "trade"
	KindMerchantEscrow Kind = "merchant_escrow"
	KindAmmPool        Kind = "amm_pool"
	KindAmmPosition    Kind = "amm_position"
	KindAmmOrder       Kind = "amm_order"
	KindTickQuery      Kind = "tick_query"
)

// Operation identifies one lifecycle step within an event family.
type Operation string

const (
	OpCoinDepositCreate  Operation = "coin_deposit_create"
	OpCoinDepositProcess Operation = "coin_deposit_process"
	OpCoinDepositFail    Operation = "coin_deposit_fail"

	OpCoinWithdrawalCreate  Operation = "coin_withdrawal_create"
	OpCoinWithdrawalProcess Operation = "coin_withdrawal_process"
	OpCoinWithdrawalRelease Operation = "coin_withdrawal_release"
	OpCoinWithdrawalFail    Operation = "coin_withdrawal_fail"
	OpCoinWithdrawalCancel  Operation = "coin_withdrawal_cancel"

	OpBalanceLockCreate  Operation = "balance_lock_create"
	OpBalanceLockRelease Operation = "balance_lock_release"

	OpOfferCreate  Operation = "offer_create"
	OpOfferUpdate  Operation = "offer_update"
	OpOfferDisable Operation = "offer_disable"
	OpOfferEnable  Operation = "offer_enable"
	OpOfferDelete  Operation = "offer_delete"

	OpTradeCreate  Operation = "trade_create"
	OpTradeRelease Operation = "trade_release"
	OpTradeCancel  Operation = "trade_cancel"

	OpMerchantEscrowMint Operation = "merchant_escrow_mint"
	OpMerchantEscrowBurn Operation = "merchant_escrow_burn"

	OpAmmPoolCreate Operation = "amm_pool_create"
	OpAmmPoolUpdate Operation = "amm_pool_update"

	OpAmmPositionCreate     Operation = "amm_position_create"
	OpAmmPositionCollectFee Operation = "amm_position_collect_fee"
	OpAmmPositionClose      Operation = "amm_position_close"

	OpAmmOrderCreate Operation = "amm_order_create"

	OpTickQuery Operation = "tick_query"
)

// Event is the sealed set of typed business events. Each variant carries the
// identifiers the pipeline needs for ordering and reporting; the lifecycle
// semantics live in the engines.
type Event interface {
	// EventID is the unique id of this event instance.
	EventID() string
	// ProducerKey identifies the key-affinity shard the event belongs to;
	// two events with the same producer key must never run concurrently.
	ProducerKey() string
	// Kind names the variant.
	Kind() Kind
	// Operation names the lifecycle step.
	Operation() Operation
	// ActionID is the identifier of the entity the event acts on.
	ActionID() string
}

// Base carries the metadata common to every typed event.
type Base struct {
	ID        string    `json:"event_id"`
	Op        Operation `json:"operation_type"`
	Timestamp int64     `json:"timestamp"`
}

// NewBase builds event metadata with a fresh uuid.
func NewBase(op Operation) Base {
	return Base{
		ID:        uuid.NewString(),
		Op:        op,
		Timestamp: time.Now().UnixMilli(),
	}
}

func (b Base) EventID() string      { return b.ID }
func (b Base) Operation() Operation { return b.Op }

type requiredField struct {
	name  string
	value string
}

// requireFields returns a structural error naming the first blank field.
func requireFields(kind Kind, fields ...requiredField) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s event: %s is required", kind, f.name)
		}
	}
	return nil
}

// unsupportedOperation is the structural error for an action/operation pair
// outside the event family.
func unsupportedOperation(kind Kind, op Operation) error {
	return fmt.Errorf("%s event: unsupported operation %q", kind, op)
}
