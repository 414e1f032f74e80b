package libee

type noopSink struct{}

func (noopSink) Write(Frame) error { return nil }

func (noopSink) Close() {}

func (noopSink) CloseChan() CloseChan { return nil }

func (noopSink) CloseErr() error { return nil }

// NewNoopSink returns a sink that discards every frame.
func NewNoopSink() Sink { return noopSink{} }
