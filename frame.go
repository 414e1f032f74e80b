package libee

import "fmt"

// Frame is the envelope the bridge moves over the wire: an event name
// plus that emission's encoded payload. The payload bytes are exactly
// what the emitter produced; the receiving side hands them to each
// listener without re-encoding.
type Frame struct {
	Event   string `json:"event"   msgpack:"event"`
	Payload []byte `json:"payload" msgpack:"payload"`
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{event=%s,payload=%d bytes}", f.Event, len(f.Payload))
}

func NewFrame(event string, payload []byte) Frame {
	return Frame{Event: event, Payload: payload}
}

// EncodeFrame serializes a frame for the wire with the given codec.
func EncodeFrame(c Codec, f Frame) ([]byte, error) {
	return c.Encode(f)
}

// DecodeFrame recovers a frame from its wire form.
func DecodeFrame(c Codec, data []byte) (Frame, error) {
	var f Frame
	err := c.Decode(data, &f)
	return f, err
}
