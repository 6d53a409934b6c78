// Package jsonkit provides the JSON based codecs of the module.
package jsonkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"go.llib.dev/hookit/port/codec"
)

// Codec implements a JSON codec where list encoding uses the JSON array format.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, ptr any) error { return json.Unmarshal(data, ptr) }

func (Codec) MakeListEncoder(w io.Writer) codec.ListEncoder {
	return &arrayEncoder{W: w}
}

func (Codec) MakeListDecoder(r io.Reader) codec.ListDecoder {
	return &arrayDecoder{Decoder: json.NewDecoder(r)}
}

type arrayEncoder struct {
	W io.Writer

	opened bool
	count  int
	closed bool
}

func (enc *arrayEncoder) Encode(v any) error {
	if enc.closed {
		return fmt.Errorf("list encoder is already closed")
	}
	if !enc.opened {
		if _, err := enc.W.Write([]byte(`[`)); err != nil {
			return err
		}
		enc.opened = true
	}
	if 0 < enc.count {
		if _, err := enc.W.Write([]byte(`,`)); err != nil {
			return err
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := enc.W.Write(data); err != nil {
		return err
	}
	enc.count++
	return nil
}

func (enc *arrayEncoder) Close() error {
	if enc.closed {
		return nil
	}
	enc.closed = true
	if !enc.opened {
		_, err := enc.W.Write([]byte(`[]`))
		return err
	}
	_, err := enc.W.Write([]byte(`]`))
	return err
}

type arrayDecoder struct {
	Decoder *json.Decoder

	opened bool
	done   bool
	err    error
	data   json.RawMessage
}

func (dec *arrayDecoder) Next() bool {
	if dec.err != nil || dec.done {
		return false
	}
	if !dec.opened {
		if err := dec.expectDelim('['); err != nil {
			dec.err = err
			return false
		}
		dec.opened = true
	}
	if !dec.Decoder.More() {
		dec.done = true
		if err := dec.expectDelim(']'); err != nil {
			dec.err = err
		}
		return false
	}
	var raw json.RawMessage
	if err := dec.Decoder.Decode(&raw); err != nil {
		dec.err = err
		return false
	}
	dec.data = raw
	return true
}

func (dec *arrayDecoder) expectDelim(delim json.Delim) error {
	tok, err := dec.Decoder.Token()
	if err != nil {
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != delim {
		return fmt.Errorf("unexpected token in JSON list: %v", tok)
	}
	return nil
}

func (dec *arrayDecoder) Decode(ptr any) error {
	if dec.data == nil {
		return fmt.Errorf("Next must be called before Decode")
	}
	return json.Unmarshal(dec.data, ptr)
}

func (dec *arrayDecoder) Err() error {
	if errors.Is(dec.err, io.EOF) {
		return nil
	}
	return dec.err
}

func (dec *arrayDecoder) Close() error { return nil }

// LinesCodec implements a newline delimited JSON codec (ndjson),
// where a list is encoded as one JSON document per line.
type LinesCodec struct{}

func (LinesCodec) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return json.Marshal(v)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := 0; i < rv.Len(); i++ {
		if err := enc.Encode(rv.Index(i).Interface()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (LinesCodec) Unmarshal(data []byte, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer {
		return fmt.Errorf("pointer expected for LinesCodec.Unmarshal, got: %T", ptr)
	}
	if rv.Elem().Kind() != reflect.Slice {
		return json.Unmarshal(data, ptr)
	}
	var (
		dec = json.NewDecoder(bytes.NewReader(data))
		out = reflect.MakeSlice(rv.Elem().Type(), 0, 0)
	)
	for {
		elem := reflect.New(rv.Elem().Type().Elem())
		if err := dec.Decode(elem.Interface()); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}
	rv.Elem().Set(out)
	return nil
}

func (LinesCodec) MakeListEncoder(w io.Writer) codec.ListEncoder {
	return linesEncoder{Encoder: json.NewEncoder(w)}
}

func (LinesCodec) MakeListDecoder(r io.Reader) codec.ListDecoder {
	return &linesDecoder{Decoder: json.NewDecoder(r)}
}

type linesEncoder struct{ Encoder *json.Encoder }

func (enc linesEncoder) Encode(v any) error { return enc.Encoder.Encode(v) }

func (enc linesEncoder) Close() error { return nil }

type linesDecoder struct {
	Decoder *json.Decoder

	err  error
	done bool
	data json.RawMessage
}

func (dec *linesDecoder) Next() bool {
	if dec.err != nil || dec.done {
		return false
	}
	var raw json.RawMessage
	if err := dec.Decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			dec.done = true
		} else {
			dec.err = err
		}
		return false
	}
	dec.data = raw
	return true
}

func (dec *linesDecoder) Decode(ptr any) error {
	if dec.data == nil {
		return fmt.Errorf("Next must be called before Decode")
	}
	return json.Unmarshal(dec.data, ptr)
}

func (dec *linesDecoder) Err() error { return dec.err }

func (dec *linesDecoder) Close() error { return nil }
