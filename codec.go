package libee

import (
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

type (
	// Codec converts emitted values to and from the shared intermediate
	// representation every listener decodes against. The representation
	// must be self-describing enough for a value encoded from one type
	// to be recovered into a structurally compatible one.
	Codec interface {
		// Encode converts a value into the shared representation.
		Encode(value any) ([]byte, error)

		// Decode recovers a value from the representation into the
		// target pointed to by into.
		Decode(payload []byte, into any) error
	}

	// MsgpackCodec is the default codec: compact self-describing
	// binary via MessagePack.
	MsgpackCodec struct{}

	// JSONCodec trades payload size for a representation that is
	// readable on the wire.
	JSONCodec struct{}
)

func (MsgpackCodec) Encode(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

func (MsgpackCodec) Decode(payload []byte, into any) error {
	return msgpack.Unmarshal(payload, into)
}

func (JSONCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONCodec) Decode(payload []byte, into any) error {
	return json.Unmarshal(payload, into)
}
