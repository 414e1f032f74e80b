// Package libee is an in-process publish/subscribe registry: typed
// listeners subscribe to named events, and emitting a value fans it
// out synchronously to every listener able to decode it.
package libee

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type (
	// Handler is a typed callback invoked with the value recovered from
	// an emission's encoded representation.
	Handler[T any] func(T)

	// rawHandler is the type-erased adapter stored in the listener
	// table. It receives the emission's encoded representation and
	// performs the decode-then-invoke sequence for its own target type.
	rawHandler func(payload []byte) error

	listener struct {
		id        string
		invoke    rawHandler
		limited   bool
		remaining uint64
	}

	// Emitter is an in-process event registry. Listeners of unrelated
	// parameter types are registered under string event names and
	// invoked synchronously, in registration order, whenever a matching
	// event is emitted. The emitted value is encoded once per emission
	// through the configured Codec; each listener decodes it back into
	// its own parameter type.
	//
	// Type compatibility between an emitted value and a listener is
	// only checked at decode time, per listener, per emission. Decode
	// failures are isolated: every remaining listener still runs, and
	// the failures come back aggregated in a *DispatchError.
	//
	// An Emitter is not safe for concurrent use. Share one across
	// goroutines through a SharedEmitter or a caller-owned lock held
	// for the full duration of each operation.
	Emitter struct {
		listeners map[string][]listener
		codec     Codec
		logger    logger
	}

	Option func(*Emitter)
)

// WithCodec overrides the codec used to encode emitted values and
// decode them inside listener adapters. Defaults to MsgpackCodec.
func WithCodec(c Codec) Option {
	return func(e *Emitter) {
		e.codec = c
	}
}

// WithLogger sets the logger used to report listener failures.
func WithLogger(l logger) Option {
	return func(e *Emitter) {
		e.logger = l
	}
}

// New creates an empty Emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		listeners: make(map[string][]listener),
		codec:     MsgpackCodec{},
		logger:    noopLogger{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// On registers fn as a listener for the given event and returns the
// listener's id. The value emitted for the event is decoded into T
// before fn runs; an emission whose value cannot decode into T leaves
// fn uncalled and surfaces through Emit's returned error.
//
// On is a package function rather than a method so that T can be
// inferred from fn's own signature.
func On[T any](e *Emitter, event string, fn Handler[T]) string {
	return OnLimited(e, event, fn, 0)
}

// Once registers fn as a listener that is removed after its first
// delivery.
func Once[T any](e *Emitter, event string, fn Handler[T]) string {
	return OnLimited(e, event, fn, 1)
}

// OnLimited registers fn as a listener that is removed once it has been
// delivered to limit times. A limit of zero means no limit.
func OnLimited[T any](e *Emitter, event string, fn Handler[T], limit uint64) string {
	codec := e.codec

	adapter := func(payload []byte) error {
		var value T
		if err := codec.Decode(payload, &value); err != nil {
			return errors.Wrap(ErrDecode, err.Error())
		}
		fn(value)
		return nil
	}

	return e.add(event, adapter, limit)
}

// OnRaw registers a listener over the encoded representation itself,
// bypassing the decode step. Raw listeners serve diagnostics and
// transports such as Forward; an error returned by fn is reported
// through the same per-listener aggregate as a decode failure.
func (e *Emitter) OnRaw(event string, fn func(payload []byte) error) string {
	return e.add(event, fn, 0)
}

func (e *Emitter) add(event string, fn rawHandler, limit uint64) string {
	id := uuid.NewString()

	e.listeners[event] = append(e.listeners[event], listener{
		id:        id,
		invoke:    fn,
		limited:   limit > 0,
		remaining: limit,
	})

	e.logger.WithField("event", event).Debugf("registered listener %s", id)

	return id
}

// Emit encodes value once and invokes every listener registered for the
// given event, in registration order, on the calling goroutine. It
// returns the number of listeners invoked.
//
// An event with no listeners is a no-op. A value that cannot be encoded
// aborts the emission before any listener runs, wrapping ErrEncode.
// Listener failures (decode failures, raw listener errors) never stop
// the fan-out; they are logged and returned together as a
// *DispatchError once every listener has run.
//
// Handlers may re-enter the emitter. Listeners registered during an
// emission do not observe it; listeners removed during it are skipped.
func (e *Emitter) Emit(event string, value any) (int, error) {
	if len(e.listeners[event]) == 0 {
		return 0, nil
	}

	payload, err := e.codec.Encode(value)
	if err != nil {
		return 0, errors.Wrap(ErrEncode, err.Error())
	}

	return e.emitPayload(event, payload)
}

// emitPayload dispatches an already-encoded representation. It backs
// both Emit and the bridge's inbound Pump, so a frame received over the
// wire is fanned out exactly like a local emission.
func (e *Emitter) emitPayload(event string, payload []byte) (int, error) {
	seq := e.listeners[event]
	if len(seq) == 0 {
		return 0, nil
	}

	// Snapshot ids, not entries: handlers may mutate the table while
	// the fan-out is in flight, and each invocation re-checks that its
	// listener is still registered.
	snapshot := make([]string, len(seq))
	for i, l := range seq {
		snapshot[i] = l.id
	}

	var (
		invoked  int
		failures []*ListenerError
	)

	for _, id := range snapshot {
		l, ok := e.lookup(event, id)
		if !ok {
			continue
		}

		if l.limited {
			e.countDown(event, id)
		}

		invoked++

		if err := l.invoke(payload); err != nil {
			e.logger.WithField("event", event).Errorf("listener %s failed: %s", id, err)
			failures = append(failures, &ListenerError{ID: id, Event: event, cause: err})
		}
	}

	if len(failures) > 0 {
		return invoked, &DispatchError{Event: event, Failures: failures}
	}

	return invoked, nil
}

// RemoveListener removes the listener with the given id, preserving the
// relative order of the remaining listeners, and reports whether an
// entry was removed. Removing an id twice is safe; the second call
// reports false.
func (e *Emitter) RemoveListener(id string) bool {
	for event, seq := range e.listeners {
		for i, l := range seq {
			if l.id == id {
				e.listeners[event] = append(seq[:i], seq[i+1:]...)
				return true
			}
		}
	}

	return false
}

// ListenerCount returns the number of listeners currently registered
// for the given event.
func (e *Emitter) ListenerCount(event string) int {
	return len(e.listeners[event])
}

// EventNames returns the names of all events with at least one
// registered listener, sorted.
func (e *Emitter) EventNames() []string {
	names := make([]string, 0, len(e.listeners))
	for event, seq := range e.listeners {
		if len(seq) > 0 {
			names = append(names, event)
		}
	}

	sort.Strings(names)

	return names
}

func (e *Emitter) lookup(event, id string) (listener, bool) {
	for _, l := range e.listeners[event] {
		if l.id == id {
			return l, true
		}
	}

	return listener{}, false
}

// countDown burns one delivery off a limited listener, removing it once
// exhausted. It runs before the handler so that a once listener is
// already gone if its own handler re-enters Emit.
func (e *Emitter) countDown(event, id string) {
	seq := e.listeners[event]
	for i := range seq {
		if seq[i].id != id {
			continue
		}
		seq[i].remaining--
		if seq[i].remaining == 0 {
			e.listeners[event] = append(seq[:i], seq[i+1:]...)
		}
		return
	}
}
