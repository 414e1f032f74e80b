package libee

import "sync"

// SharedEmitter guards one Emitter with a mutex so a single registry
// can be reached from many call sites without threading it through
// every signature. Every method holds the lock for the full duration
// of the underlying operation, handlers included.
//
// Handlers run while the lock is held: a handler that needs to
// register, remove or emit re-entrantly must do so on the *Emitter it
// is reached through (see Do), never on the SharedEmitter itself.
type SharedEmitter struct {
	mu    sync.Mutex
	inner *Emitter
}

func NewSharedEmitter(e *Emitter) *SharedEmitter {
	return &SharedEmitter{inner: e}
}

// Do runs fn with the lock held, handing it the raw emitter. This is
// the entry point for typed registration (see SharedOn) and for any
// sequence of operations that must be atomic.
func (s *SharedEmitter) Do(fn func(e *Emitter)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.inner)
}

func (s *SharedEmitter) Emit(event string, value any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Emit(event, value)
}

func (s *SharedEmitter) OnRaw(event string, fn func(payload []byte) error) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.OnRaw(event, fn)
}

func (s *SharedEmitter) RemoveListener(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.RemoveListener(id)
}

func (s *SharedEmitter) ListenerCount(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.ListenerCount(event)
}

func (s *SharedEmitter) EventNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.EventNames()
}

// SharedOn registers fn on the shared emitter under its lock.
func SharedOn[T any](s *SharedEmitter, event string, fn Handler[T]) (id string) {
	s.Do(func(e *Emitter) {
		id = On(e, event, fn)
	})
	return id
}

// SharedOnce registers a one-delivery listener on the shared emitter
// under its lock.
func SharedOnce[T any](s *SharedEmitter, event string, fn Handler[T]) (id string) {
	s.Do(func(e *Emitter) {
		id = Once(e, event, fn)
	})
	return id
}

var (
	globalOnce sync.Once
	global     *SharedEmitter
)

// Global returns the process-wide shared emitter, created on first
// use with the default codec.
func Global() *SharedEmitter {
	globalOnce.Do(func() {
		global = NewSharedEmitter(New())
	})
	return global
}
