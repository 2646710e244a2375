package event

import (
	"time"
)

// emptyEvent is the generic fallback returned by Envelope.GetEvent when the
// envelope wraps no specific event.
type emptyEvent struct {
	inputEventID string
}

func (e emptyEvent) EventID() string      { return e.inputEventID }
func (e emptyEvent) ProducerKey() string  { return "" }
func (e emptyEvent) Kind() Kind           { return KindUnknown }
func (e emptyEvent) Operation() Operation { return "" }
func (e emptyEvent) ActionID() string     { return "" }

// Envelope wraps exactly one typed event with the processing outcome the
// pipeline records.
type Envelope struct {
	Event        Event
	InputEventID string
	Timestamp    time.Time
	Success      bool
	ErrorMessage string
}

// NewEnvelope wraps a typed event.
func NewEnvelope(ev Event) *Envelope {
	return &Envelope{Event: ev, Timestamp: time.Now()}
}

// GetEvent returns the wrapped event, or a generic empty fallback when the
// envelope carries none.
func (e *Envelope) GetEvent() Event {
	if e.Event != nil {
		return e.Event
	}
	return emptyEvent{inputEventID: e.InputEventID}
}

// EventID delegates to the wrapped event.
func (e *Envelope) EventID() string { return e.GetEvent().EventID() }

// ProducerKey delegates to the wrapped event.
func (e *Envelope) ProducerKey() string { return e.GetEvent().ProducerKey() }

// MarkSuccess records a successful pass.
func (e *Envelope) MarkSuccess() {
	e.Success = true
	e.ErrorMessage = ""
	e.Timestamp = time.Now()
}

// MarkFailure records the error of a failed pass. The error text surfaces
// verbatim in the notification payload.
func (e *Envelope) MarkFailure(err error) {
	e.Success = false
	if err != nil {
		e.ErrorMessage = err.Error()
	}
	e.Timestamp = time.Now()
}

// NotificationPayload serializes the processing outcome for downstream
// consumers. object is the best-effort entity snapshot the engine produced.
func (e *Envelope) NotificationPayload(object any) map[string]any {
	ev := e.GetEvent()
	payload := map[string]any{
		"eventId":       ev.EventID(),
		"actionType":    string(ev.Kind()),
		"actionId":      ev.ActionID(),
		"operationType": string(ev.Operation()),
		"object":        object,
		"isSuccess":     e.Success,
		"timestamp":     e.Timestamp.UnixMilli(),
	}
	if e.ErrorMessage != "" {
		payload["errorMessage"] = e.ErrorMessage
	}
	if e.Event == nil && e.InputEventID != "" {
		payload["inputEventId"] = e.InputEventID
	}
	return payload
}
