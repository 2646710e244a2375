package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"exchcore/domain"
	"exchcore/event"
)

func depositEnvelope(t *testing.T, op event.Operation, id, account, amount string) *event.Envelope {
	t.Helper()
	return event.NewEnvelope(&event.CoinDepositEvent{
		Base:       event.NewBase(op),
		DepositID:  id,
		AccountKey: account,
		Coin:       "btc",
		Amount:     dec(t, amount),
	})
}

func TestPipelineProcessesInSubmissionOrder(t *testing.T) {
	d, reg := newTestDispatcher(t)
	p := NewPipeline(d, 16, nil, nil)

	// process before create only works if order holds
	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositCreate, "dep-1", "btc:alice", "3")))
	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositProcess, "dep-1", "btc:alice", "3")))
	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositCreate, "dep-2", "btc:alice", "4")))
	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositProcess, "dep-2", "btc:alice", "4")))
	p.Drain()

	account := accountOf(t, reg, "btc:alice")
	require.Equal(t, "7", account.Available.String())
}

func TestPipelineFailureConfinedToEnvelope(t *testing.T) {
	d, reg := newTestDispatcher(t)

	var outcomes []bool
	notify := func(env *event.Envelope, object any) {
		outcomes = append(outcomes, env.Success)
	}
	p := NewPipeline(d, 16, notify, nil)

	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositProcess, "ghost", "", "1")))
	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositCreate, "dep-1", "btc:alice", "5")))
	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositProcess, "dep-1", "btc:alice", "5")))
	p.Drain()

	require.Equal(t, []bool{false, true, true}, outcomes)
	account := accountOf(t, reg, "btc:alice")
	require.Equal(t, "5", account.Available.String())
}

func TestPipelineRecoversFromPanic(t *testing.T) {
	d, _ := newTestDispatcher(t)
	// a nil engine makes the dispatch panic inside the processing step
	d.Deposits = nil

	var outcomes []bool
	var failurePayload map[string]any
	notify := func(env *event.Envelope, object any) {
		outcomes = append(outcomes, env.Success)
		if !env.Success {
			failurePayload = env.NotificationPayload(object)
		}
	}
	p := NewPipeline(d, 16, notify, nil)

	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositCreate, "dep-1", "btc:alice", "5")))
	require.NoError(t, p.TrySubmit(event.NewEnvelope(&event.BalanceLockEvent{
		Base:        event.NewBase(event.OpBalanceLockCreate),
		LockID:      "lock-1",
		AccountKeys: []string{"btc:alice"},
	})))
	p.Drain()

	require.Equal(t, []bool{false, true}, outcomes)
	require.Contains(t, failurePayload["errorMessage"], "processor panic")
}

func TestPipelineTrySubmitQueueFull(t *testing.T) {
	d, _ := newTestDispatcher(t)
	p := NewPipeline(d, 1, nil, nil)

	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositCreate, "dep-1", "btc:alice", "1")))
	err := p.TrySubmit(depositEnvelope(t, event.OpCoinDepositCreate, "dep-2", "btc:alice", "1"))
	require.ErrorIs(t, err, ErrQueueFull)
}

func TestPipelineSubmitHonoursContext(t *testing.T) {
	d, _ := newTestDispatcher(t)
	p := NewPipeline(d, 1, nil, nil)

	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositCreate, "dep-1", "btc:alice", "1")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, depositEnvelope(t, event.OpCoinDepositCreate, "dep-2", "btc:alice", "1"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPipelineRunStopsOnCancel(t *testing.T) {
	d, reg := newTestDispatcher(t)
	p := NewPipeline(d, 16, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	require.NoError(t, p.Submit(ctx, depositEnvelope(t, event.OpCoinDepositCreate, "dep-1", "btc:alice", "5")))
	require.NoError(t, p.Submit(ctx, depositEnvelope(t, event.OpCoinDepositProcess, "dep-1", "btc:alice", "5")))

	require.Eventually(t, func() bool {
		account, ok, err := reg.Accounts.Get("btc:alice")
		return err == nil && ok && account.Available.Equal(dec(t, "5"))
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		return p.Submit(context.Background(), depositEnvelope(t, event.OpCoinDepositCreate, "dep-9", "btc:alice", "1")) != nil
	}, time.Second, 5*time.Millisecond)
}

func TestNotificationPayloadSuccess(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var payload map[string]any
	notify := func(env *event.Envelope, object any) {
		payload = env.NotificationPayload(object)
	}
	p := NewPipeline(d, 4, notify, nil)

	ev := depositEnvelope(t, event.OpCoinDepositCreate, "dep-1", "btc:alice", "5")
	require.NoError(t, p.TrySubmit(ev))
	p.Drain()

	require.Equal(t, ev.EventID(), payload["eventId"])
	require.Equal(t, "coin_deposit", payload["actionType"])
	require.Equal(t, "dep-1", payload["actionId"])
	require.Equal(t, string(event.OpCoinDepositCreate), payload["operationType"])
	require.Equal(t, true, payload["isSuccess"])
	require.NotContains(t, payload, "errorMessage")
	require.IsType(t, &domain.CoinDeposit{}, payload["object"])
}

func TestNotificationPayloadFailureCarriesErrorVerbatim(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var payload map[string]any
	notify := func(env *event.Envelope, object any) {
		payload = env.NotificationPayload(object)
	}
	p := NewPipeline(d, 4, notify, nil)

	require.NoError(t, p.TrySubmit(depositEnvelope(t, event.OpCoinDepositProcess, "ghost", "", "1")))
	p.Drain()

	require.Equal(t, false, payload["isSuccess"])
	require.Equal(t, "coin deposit not found: ghost", payload["errorMessage"])
}

func TestNotificationPayloadEmptyEventFallback(t *testing.T) {
	env := &event.Envelope{InputEventID: "input-7"}
	env.MarkFailure(nil)

	payload := env.NotificationPayload(nil)
	require.Equal(t, "input-7", payload["eventId"])
	require.Equal(t, string(event.KindUnknown), payload["actionType"])
	require.Equal(t, "input-7", payload["inputEventId"])
	require.Equal(t, false, payload["isSuccess"])
}
