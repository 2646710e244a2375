package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"exchcore/event"
	"exchcore/observability/metrics"
)

// ErrQueueFull is returned by TrySubmit when the inbox has no room.
var ErrQueueFull = errors.New("pipeline: queue full")

// Notifier consumes the outcome of every processed envelope. object is the
// best-effort entity snapshot from the engine.
type Notifier func(env *event.Envelope, object any)

// Pipeline is the single-writer event loop: envelopes drain from a bounded
// inbox strictly in submission order onto one goroutine, which is the only
// writer of the entity caches and the store. Store writes complete within an
// envelope's turn, so the next envelope touching the same entity observes
// the prior write.
type Pipeline struct {
	inbox      chan *event.Envelope
	dispatcher *Dispatcher
	notify     Notifier
	log        *slog.Logger
	done       chan struct{}
}

// NewPipeline builds a pipeline with the given inbox capacity. notify may be
// nil when no downstream consumer is wired.
func NewPipeline(dispatcher *Dispatcher, inboxSize int, notify Notifier, log *slog.Logger) *Pipeline {
	if inboxSize <= 0 {
		inboxSize = 1024
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		inbox:      make(chan *event.Envelope, inboxSize),
		dispatcher: dispatcher,
		notify:     notify,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Submit enqueues an envelope, blocking while the inbox is full. It fails
// only when ctx is cancelled or the pipeline has stopped.
func (p *Pipeline) Submit(ctx context.Context, env *event.Envelope) error {
	select {
	case p.inbox <- env:
		metrics.Pipeline().QueueLen.Set(float64(len(p.inbox)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return errors.New("pipeline: stopped")
	}
}

// TrySubmit enqueues an envelope without blocking, returning ErrQueueFull
// when the inbox has no room.
func (p *Pipeline) TrySubmit(env *event.Envelope) error {
	select {
	case p.inbox <- env:
		metrics.Pipeline().QueueLen.Set(float64(len(p.inbox)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Run drains the inbox until ctx is cancelled. It must run in exactly one
// goroutine.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.done)
	p.log.Info("pipeline started", slog.Int("inbox_capacity", cap(p.inbox)))
	for {
		select {
		case <-ctx.Done():
			p.log.Info("pipeline stopping")
			return
		case env := <-p.inbox:
			p.processEnvelope(env)
		}
	}
}

// Drain processes every envelope currently queued and returns. Used by tests
// and replay tooling that submit a batch and need the post-state
// synchronously.
func (p *Pipeline) Drain() {
	for {
		select {
		case env := <-p.inbox:
			p.processEnvelope(env)
		default:
			return
		}
	}
}

// processEnvelope runs one envelope through its engine. Panics and errors
// are both confined to the envelope: the loop always advances.
func (p *Pipeline) processEnvelope(env *event.Envelope) {
	m := metrics.Pipeline()
	start := time.Now()
	var result Result
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = failure(nil, fmt.Errorf("processor panic: %v", r))
				p.log.Error("processor panic recovered",
					slog.String("event_id", env.EventID()),
					slog.Any("panic", r))
			}
		}()
		result = p.dispatcher.Dispatch(env.GetEvent())
	}()

	kind := string(env.GetEvent().Kind())
	if result.Err != nil {
		env.MarkFailure(result.Err)
		m.Processed.WithLabelValues(kind, "failure").Inc()
		m.Failures.WithLabelValues(kind).Inc()
		p.log.Warn("event failed",
			slog.String("event_id", env.EventID()),
			slog.String("kind", kind),
			slog.String("operation", string(env.GetEvent().Operation())),
			slog.String("error", result.Err.Error()))
	} else {
		env.MarkSuccess()
		m.Processed.WithLabelValues(kind, "success").Inc()
	}
	m.Latency.Observe(time.Since(start).Seconds())
	m.QueueLen.Set(float64(len(p.inbox)))
	if p.notify != nil {
		p.notify(env, result.Entity)
	}
}
