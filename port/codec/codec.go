// Package codec describes the serialization contracts of the module.
package codec

import "io"

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, ptr any) error
}

type ListCodec interface {
	ListEncoderMaker
	ListDecoderMaker
}

type ListEncoderMaker interface {
	MakeListEncoder(w io.Writer) ListEncoder
}

type ListDecoderMaker interface {
	MakeListDecoder(r io.Reader) ListDecoder
}

type ListEncoder interface {
	// Encode will encode the next value into the underlying io writer.
	Encode(v any) error
	// Closer represents the finishing of the list encoding process.
	io.Closer
}

type ListDecoder interface {
	// Decode will decode the current list element into the given pointer.
	Decode(ptr any) error
	// Next will ensure that Decode returns the next element when executed.
	// If the next value is not retrievable, Next returns false and Err() returns the error cause.
	Next() bool
	// Err returns the error cause.
	Err() error
	// Closer is required to release any resource held for the decoding process.
	io.Closer
}
