package libee

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/fasthttp/websocket"
)

type (
	CloseChan chan struct{}

	// Sink receives the frames forwarded out of an emitter.
	Sink interface {
		// Write ships one frame towards the remote end.
		Write(f Frame) error

		// Close terminates the sink and releases its resources.
		Close()

		// CloseChan returns a channel that is closed when the sink is
		// no longer usable.
		CloseChan() CloseChan

		// CloseErr explains why the sink closed, nil on a clean close.
		CloseErr() error
	}

	// FrameSource yields inbound frames to be replayed into an emitter.
	FrameSource interface {
		// Read blocks until a frame arrives or the source fails.
		Read() (Frame, error)
	}

	// WsBridge carries frames over a WebSocket connection. It is both a
	// Sink for Forward and a FrameSource for Pump, so two processes can
	// mirror each other's emissions over one socket.
	WsBridge struct {
		codec           Codec
		dialParamsRepo  DialParamsRepo
		logger          logger
		dialer          *websocket.Dialer
		conn            *websocket.Conn
		closeChan       CloseChan
		closeOnce       sync.Once
		closeReason     error
		closeReasonOnce sync.Once
		recv            chan Frame
		send            chan Frame
	}
)

// Forward taps the given events on the emitter and writes each
// emission's payload to the sink, wrapped in a Frame. The payload
// travels exactly as Emit encoded it; nothing is re-encoded. A sink
// write failure surfaces through Emit's per-listener aggregate without
// disturbing the other listeners.
//
// It returns the ids of the registered taps; detach the sink by
// removing them.
func Forward(e EventEmitter, sink Sink, events ...string) []string {
	ids := make([]string, 0, len(events))

	for _, event := range events {
		ids = append(ids, e.OnRaw(event, func(payload []byte) error {
			return sink.Write(NewFrame(event, payload))
		}))
	}

	return ids
}

// Pump reads frames from src and dispatches their payloads into the
// emitter as if they had been emitted locally, until the source fails
// or ctx is cancelled. The context is checked between reads.
//
// Per-listener failures do not stop the pump; the emitter has already
// logged and isolated them.
func Pump(ctx context.Context, src FrameSource, e *Emitter) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f, err := src.Read()
		if err != nil {
			return err
		}

		_, _ = e.emitPayload(f.Event, f.Payload)
	}
}

func NewWsBridge(
	dialer *websocket.Dialer,
	dialParamsRepo DialParamsRepo,
	codec Codec,
	logger logger,
) *WsBridge {
	return &WsBridge{
		codec:          codec,
		dialParamsRepo: dialParamsRepo,
		dialer:         dialer,
		logger:         logger.WithField("net", "ws_bridge"),
		recv:           make(chan Frame, 16),
		send:           make(chan Frame, 16),
		closeChan:      make(CloseChan),
	}
}

// Open dials the remote end and starts the read and write loops. It
// returns once the connection is established or the dial failed.
func (w *WsBridge) Open(ctx context.Context) error {
	p, err := w.dialParamsRepo.Get(ctx)
	if err != nil {
		return err
	}

	conn, resp, err := w.dialer.Dial(p.URL.String(), p.Header)

	if err = w.handleDialError(resp, err); err != nil {
		w.logger.Errorf("connection err to %s: %s", p.URL.String(), err)
		return err
	}

	w.logger.Debugf("success opening connection to %s", p.URL.String())

	w.conn = conn

	go w.read(ctx)
	go w.write(ctx)

	return nil
}

// Write queues one frame to be sent over the socket.
func (w *WsBridge) Write(f Frame) error {
	select {
	case w.send <- f:
		return nil
	case <-w.closeChan:
		return ErrConnectionClosed
	}
}

// Read blocks until an inbound frame arrives. After the connection
// closes it keeps returning the frames that arrived before the close,
// then the close reason.
func (w *WsBridge) Read() (Frame, error) {
	select {
	case f := <-w.recv:
		return f, nil
	case <-w.closeChan:
		select {
		case f := <-w.recv:
			return f, nil
		default:
		}
		if w.closeReason != nil {
			return Frame{}, w.closeReason
		}
		return Frame{}, ErrConnectionClosed
	}
}

// Close terminates the connection and releases its resources.
func (w *WsBridge) Close() {
	w.safeClose()
}

// CloseChan returns a channel that is closed when the connection is
// closed.
func (w *WsBridge) CloseChan() CloseChan {
	return w.closeChan
}

// CloseErr explains why the connection was closed, nil on a clean
// close.
func (w *WsBridge) CloseErr() error {
	return w.closeReason
}

func (w *WsBridge) read(ctx context.Context) {
	defer w.safeClose()

	for {
		select {
		case <-w.closeChan:
			w.setCloseReason(ErrTerminated)
			return
		case <-ctx.Done():
			w.setCloseReason(ErrTerminated)
			return
		default:
			_, bts, err := w.conn.ReadMessage()
			if err != nil {
				w.logger.Errorf("error occurred on websocket read: %s", err)

				w.setCloseReason(errors.Wrap(
					ErrConnectionClosed,
					"error occurred on websocket read: "+err.Error(),
				))
				return
			}

			f, err := DecodeFrame(w.codec, bts)
			if err != nil {
				w.logger.Errorf("discarding malformed frame: %s", err)
				continue
			}

			w.logger.Debugf("<= %s", f)
			w.recv <- f
		}
	}
}

func (w *WsBridge) write(ctx context.Context) {
	defer w.safeClose()

	for {
		select {
		case <-w.closeChan:
			w.setCloseReason(ErrTerminated)
			return
		case <-ctx.Done():
			w.setCloseReason(ErrTerminated)
			return
		case f := <-w.send:
			bts, err := EncodeFrame(w.codec, f)
			if err != nil {
				w.logger.Errorf("cannot encode %s: %s", f, err)
				continue
			}

			deadline := time.Now().Add(time.Second)
			_ = w.conn.SetWriteDeadline(deadline)

			w.logger.Debugf("=> %s", f)

			if err := w.conn.WriteMessage(websocket.BinaryMessage, bts); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					w.setCloseReason(ErrConnectionClosed)
				} else {
					w.setCloseReason(errors.Wrap(ErrConnectionClosed, err.Error()))
				}
				return
			}
		}
	}
}

func (w *WsBridge) safeClose() {
	w.closeOnce.Do(w.close)
}

func (w *WsBridge) close() {
	if w.conn != nil {
		_ = w.conn.Close()
	}
	close(w.closeChan)
}

func (w *WsBridge) setCloseReason(err error) {
	w.closeReasonOnce.Do(func() {
		w.closeReason = err
	})
}

func (w *WsBridge) handleDialError(resp *http.Response, err error) error {
	// 1. Check HTTP errors first
	var msg string

	if resp != nil {
		if resp.Body != nil {
			bts, err := io.ReadAll(resp.Body)
			if err == nil {
				msg = string(bts)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.Wrap(ErrRateLimit, msg)
		}
	}

	// 2. Network errors
	if err != nil {
		return errors.Wrap(ErrCannotConnect, err.Error())
	}

	return nil
}
