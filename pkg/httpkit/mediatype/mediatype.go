// Package mediatype lists the media types the module works with out of the box.
package mediatype

type MediaType = string

const (
	JSON    MediaType = "application/json"
	NDJSON  MediaType = "application/x-ndjson"
	Msgpack MediaType = "application/msgpack"
)
