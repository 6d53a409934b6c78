package httpkit

import (
	"fmt"
	"mime"
	"reflect"
	"strconv"
	"strings"

	"go.llib.dev/hookit/pkg/errorkit"
	"go.llib.dev/hookit/pkg/httpkit/mediatype"
	"go.llib.dev/hookit/pkg/jsonkit"
	"go.llib.dev/hookit/pkg/msgpackkit"
	"go.llib.dev/hookit/pkg/reflectkit"
	"go.llib.dev/hookit/port/codec"
)

// MediaTypeCodecs is a registry that helps choose the right codec for a given media type.
type MediaTypeCodecs map[mediatype.MediaType]codec.Codec

var defaultCodecs = MediaTypeCodecs{
	mediatype.JSON:    jsonkit.Codec{},
	mediatype.NDJSON:  jsonkit.LinesCodec{},
	mediatype.Msgpack: msgpackkit.Codec{},
}

var defaultCodec = struct {
	MediaType mediatype.MediaType
	Codec     codec.Codec
}{
	MediaType: mediatype.JSON,
	Codec:     jsonkit.Codec{},
}

// Lookup returns the codec registered for the given media type.
// The registry's own entries shadow the built-in defaults.
func (m MediaTypeCodecs) Lookup(mediaType string) (codec.Codec, bool) {
	mediaType, ok := getMediaType(mediaType)
	if !ok {
		return nil, false
	}
	if m != nil {
		if c, ok := m[mediaType]; ok {
			return c, true
		}
	}
	if c, ok := defaultCodecs[mediaType]; ok {
		return c, true
	}
	return nil, false
}

// getMediaType strips the media type parameters (e.g. "; charset=utf-8")
// and normalises the media type name.
func getMediaType(mediaType string) (string, bool) {
	if mediaType == "" {
		return "", false
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return "", false
	}
	return strings.ToLower(mt), true
}

// IDConverter translates identifier values to and from their request path representation.
// The zero value handles string and integer based identifier types out of the box.
type IDConverter[ID any] struct {
	// Format encodes the ID value into its path segment form.
	Format func(ID) (string, error)
	// Parse decodes a path segment back into an ID value.
	Parse func(string) (ID, error)
}

const errIDConversionNotSupported errorkit.Error = "err-id-conversion-not-supported"

var (
	stringType = reflectkit.TypeOf[string]()
	intType    = reflectkit.TypeOf[int]()
)

func (m IDConverter[ID]) FormatID(id ID) (string, error) {
	if m.Format != nil {
		return m.Format(id)
	}
	rtype := reflectkit.TypeOf[ID]()
	switch rtype.Kind() {
	case reflect.String:
		return reflect.ValueOf(id).Convert(stringType).String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.Itoa(int(reflect.ValueOf(id).Convert(intType).Int())), nil
	default:
		return "", errIDConversionNotSupported.F("%s", rtype.String())
	}
}

func (m IDConverter[ID]) ParseID(raw string) (ID, error) {
	if m.Parse != nil {
		return m.Parse(raw)
	}
	var id ID
	rtype := reflectkit.TypeOf[ID]()
	switch rtype.Kind() {
	case reflect.String:
		reflect.ValueOf(&id).Elem().Set(reflect.ValueOf(raw).Convert(rtype))
		return id, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return id, fmt.Errorf("invalid %s id value: %w", rtype.String(), err)
		}
		reflect.ValueOf(&id).Elem().Set(reflect.ValueOf(n).Convert(rtype))
		return id, nil
	default:
		return id, errIDConversionNotSupported.F("%s", rtype.String())
	}
}
