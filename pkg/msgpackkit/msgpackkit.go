// Package msgpackkit provides a MessagePack codec,
// for when a more compact wire format is preferred over JSON.
package msgpackkit

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"go.llib.dev/hookit/port/codec"
)

// Codec implements a MessagePack codec where a list is encoded as a
// stream of consecutive MessagePack values.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (Codec) Unmarshal(data []byte, ptr any) error { return msgpack.Unmarshal(data, ptr) }

func (Codec) MakeListEncoder(w io.Writer) codec.ListEncoder {
	return streamEncoder{Encoder: msgpack.NewEncoder(w)}
}

func (Codec) MakeListDecoder(r io.Reader) codec.ListDecoder {
	return &streamDecoder{Decoder: msgpack.NewDecoder(r)}
}

type streamEncoder struct{ Encoder *msgpack.Encoder }

func (enc streamEncoder) Encode(v any) error { return enc.Encoder.Encode(v) }

func (enc streamEncoder) Close() error { return nil }

type streamDecoder struct {
	Decoder *msgpack.Decoder

	err  error
	done bool
	next bool
}

func (dec *streamDecoder) Next() bool {
	if dec.err != nil || dec.done {
		return false
	}
	if _, err := dec.Decoder.PeekCode(); err != nil {
		if errors.Is(err, io.EOF) {
			dec.done = true
		} else {
			dec.err = err
		}
		return false
	}
	dec.next = true
	return true
}

func (dec *streamDecoder) Decode(ptr any) error {
	if !dec.next {
		return fmt.Errorf("Next must be called before Decode")
	}
	dec.next = false
	return dec.Decoder.Decode(ptr)
}

func (dec *streamDecoder) Err() error { return dec.err }

func (dec *streamDecoder) Close() error { return nil }
