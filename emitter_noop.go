package libee

// EventEmitter is the non-generic surface of an emitter. Typed
// registration stays on the package-level On/Once/OnLimited functions,
// which need the concrete *Emitter.
type EventEmitter interface {
	// OnRaw registers a listener over the encoded representation.
	OnRaw(event string, fn func(payload []byte) error) string

	// Emit encodes value once and fans it out to the event's listeners,
	// returning the number of listeners invoked.
	Emit(event string, value any) (int, error)

	// RemoveListener removes the listener with the given id and reports
	// whether an entry was removed.
	RemoveListener(id string) bool

	// ListenerCount returns the number of listeners registered for the
	// given event.
	ListenerCount(event string) int

	// EventNames returns the names of all events with at least one
	// registered listener.
	EventNames() []string
}

type noopEmitter struct{}

// NewNoopEmitter returns an emitter that accepts every call and
// delivers nothing. Useful to disable eventing in embedding code.
func NewNoopEmitter() EventEmitter { return noopEmitter{} }

func (noopEmitter) OnRaw(string, func([]byte) error) string { return "" }

func (noopEmitter) Emit(string, any) (int, error) { return 0, nil }

func (noopEmitter) RemoveListener(string) bool { return false }

func (noopEmitter) ListenerCount(string) int { return 0 }

func (noopEmitter) EventNames() []string { return nil }
