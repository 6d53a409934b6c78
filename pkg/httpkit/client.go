package httpkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.llib.dev/hookit/pkg/errorkit"
	"go.llib.dev/hookit/pkg/httpkit/mediatype"
	"go.llib.dev/hookit/pkg/iterkit"
	"go.llib.dev/hookit/pkg/pathkit"
	"go.llib.dev/hookit/pkg/reflectkit"
	"go.llib.dev/hookit/pkg/retry"
	"go.llib.dev/hookit/pkg/zerokit"
	"go.llib.dev/hookit/port/codec"
	"go.llib.dev/hookit/port/crud"
	"go.llib.dev/hookit/port/crud/extid"
)

// RestClient is a generic client to a REST-like resource collection.
//
// The BaseURL may contain ":name" styled path placeholders;
// their values are taken from the request context (WithPathParam),
// and resolution fails before any network I/O when a value is missing.
type RestClient[ENT, ID any] struct {
	// BaseURL [required] is the url base that the rest client uses to access the remote resource.
	// It may contain ":name" styled path parameter placeholders.
	BaseURL string
	// HTTPClient [optional] is used to make the http requests.
	//
	// Default: httpkit.DefaultRestClientHTTPClient
	HTTPClient *http.Client
	// MediaType [optional] is used in the Content-Type and Accept headers.
	//
	// Default: mediatype.JSON
	MediaType mediatype.MediaType
	// Codec [optional] is used for the serialization of the entity values.
	//
	// Default: the MediaTypeCodecs registry decides based on the media type.
	Codec codec.Codec
	// MediaTypeCodecs [optional] is a registry that helps choose the right codec for each media type.
	//
	// Default: the built-in registry (JSON, NDJSON, msgpack)
	MediaTypeCodecs MediaTypeCodecs
	// IDConverter [optional] formats the entity identifier into its request path form.
	//
	// Default: httpkit.IDConverter[ID]
	IDConverter IDConverter[ID]
	// LookupID [optional] describes how to read the identifier of an entity value.
	//
	// Default: extid.Lookup
	LookupID crud.LookupIDFunc[ENT, ID]
	// WithContext [optional] allows decorating the context of each request,
	// e.g. selecting a parent resource with httpkit.WithPathParam.
	//
	// Default: ignored
	WithContext func(context.Context) context.Context
	// BodyReadLimit is the read limit in bytes of how much response body is accepted from the server.
	//
	// Default: DefaultBodyReadLimit
	BodyReadLimit int
}

const (
	headerKeyContentType = "Content-Type"
	headerKeyAccept      = "Accept"
)

// DefaultBodyReadLimit is the maximum number of response body bytes read,
// unless the client is configured otherwise.
var DefaultBodyReadLimit int = 16 * 1024 * 1024

var DefaultRestClientHTTPClient http.Client = http.Client{
	Transport: RetryRoundTripper{
		RetryStrategy: retry.ExponentialBackoff{
			BackoffDuration: time.Second,
		},
	},
	Timeout: 25 * time.Second,
}

// Create stores the entity in the remote resource,
// then updates it in place with the returned representation,
// which includes the resource assigned identifier.
func (r RestClient[ENT, ID]) Create(ctx context.Context, ptr *ENT) error {
	ctx = r.withContext(ctx)

	if ptr == nil {
		return fmt.Errorf("nil pointer (%s) received",
			reflectkit.TypeOf[ENT]().String())
	}

	baseURL, err := r.ResourceURL(ctx)
	if err != nil {
		return err
	}

	mediaType := r.getMediaType()
	cod := r.getCodec(mediaType)

	data, err := cod.Marshal(*ptr)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pathkit.Join(baseURL, "/"), bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Set(headerKeyContentType, mediaType)
	req.Header.Set(headerKeyAccept, mediaType)

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return err
	}

	responseBody, err := r.bodyReadAll(resp.Body)
	if err != nil {
		return err
	}

	if !statusOK(resp) {
		switch resp.StatusCode {
		case http.StatusConflict:
			return crud.ErrAlreadyExists
		default:
			return makeClientErrUnexpectedResponse(req, resp, responseBody)
		}
	}

	var got ENT
	if err := cod.Unmarshal(responseBody, &got); err != nil {
		return err
	}

	*ptr = got
	return nil
}

// FindAll returns every entity of the remote resource.
// Optional query values from the context (WithQuery) are part of the request.
func (r RestClient[ENT, ID]) FindAll(ctx context.Context) iterkit.SeqE[ENT] {
	return func(yield func(ENT, error) bool) {
		ctx := r.withContext(ctx)

		baseURL, err := r.ResourceURL(ctx)
		if err != nil {
			var zero ENT
			yield(zero, err)
			return
		}

		reqURL := pathkit.Join(baseURL, "/")
		if query, ok := LookupQuery(ctx); ok {
			reqURL += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			var zero ENT
			yield(zero, err)
			return
		}

		mediaType := r.getMediaType()
		req.Header.Set(headerKeyContentType, mediaType)
		req.Header.Set(headerKeyAccept, mediaType)

		resp, err := r.httpClient().Do(req)
		if err != nil {
			var zero ENT
			yield(zero, err)
			return
		}

		if !statusOK(resp) {
			responseBody, err := r.bodyReadAll(resp.Body)
			if err != nil {
				var zero ENT
				yield(zero, err)
				return
			}
			var zero ENT
			yield(zero, makeClientErrUnexpectedResponse(req, resp, responseBody))
			return
		}

		cod, respMediaType, ok := r.contentTypeBasedCodec(resp)
		if !ok {
			var zero ENT
			yield(zero, fmt.Errorf("no codec configured for response content type: %s", respMediaType))
			return
		}

		dm, ok := cod.(codec.ListDecoderMaker)
		if !ok {
			responseBody, err := r.bodyReadAll(resp.Body)
			if err != nil {
				var zero ENT
				yield(zero, err)
				return
			}
			var got []ENT
			if err := cod.Unmarshal(responseBody, &got); err != nil {
				var zero ENT
				yield(zero, err)
				return
			}
			for _, v := range got {
				if !yield(v, nil) {
					return
				}
			}
			return
		}

		dec := dm.MakeListDecoder(resp.Body)
		defer dec.Close()
		defer resp.Body.Close()
		for dec.Next() {
			var got ENT
			if err := dec.Decode(&got); err != nil {
				var zero ENT
				if !yield(zero, err) {
					return
				}
				continue
			}
			if !yield(got, nil) {
				return
			}
		}
		if err := dec.Err(); err != nil {
			var zero ENT
			yield(zero, err)
		}
	}
}

// FindByID returns the entity that belongs to the given identifier,
// and reports whether the remote resource had it.
func (r RestClient[ENT, ID]) FindByID(ctx context.Context, id ID) (ent ENT, found bool, err error) {
	ctx = r.withContext(ctx)

	requestURL, err := r.EntityURL(ctx, id)
	if err != nil {
		return ent, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return ent, false, err
	}

	mediaType := r.getMediaType()
	req.Header.Set(headerKeyContentType, mediaType)
	req.Header.Set(headerKeyAccept, mediaType)

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return ent, false, err
	}

	responseBody, err := r.bodyReadAll(resp.Body)
	if err != nil {
		return ent, false, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return ent, false, nil
	}

	if !statusOK(resp) {
		return ent, false, makeClientErrUnexpectedResponse(req, resp, responseBody)
	}

	cod, respMediaType, ok := r.contentTypeBasedCodec(resp)
	if !ok {
		return ent, false, fmt.Errorf("no codec configured for response content type: %s", respMediaType)
	}

	var got ENT
	if err := cod.Unmarshal(responseBody, &got); err != nil {
		return ent, false, err
	}

	return got, true, nil
}

// Update replaces the remote entity that belongs to the identifier carried by the given entity,
// then updates the entity in place with the representation the server returned.
func (r RestClient[ENT, ID]) Update(ctx context.Context, ptr *ENT) error {
	ctx = r.withContext(ctx)

	if ptr == nil {
		return fmt.Errorf("nil pointer (%s) received",
			reflectkit.TypeOf[ENT]().String())
	}

	id, ok := r.lookupID(*ptr)
	if !ok {
		return fmt.Errorf("unable to find the %s in %s, try configuring RestClient.LookupID",
			reflectkit.TypeOf[ID]().String(), reflectkit.TypeOf[ENT]().String())
	}

	requestURL, err := r.EntityURL(ctx, id)
	if err != nil {
		return err
	}

	mediaType := r.getMediaType()
	cod := r.getCodec(mediaType)

	data, err := cod.Marshal(*ptr)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, requestURL, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Set(headerKeyContentType, mediaType)
	req.Header.Set(headerKeyAccept, mediaType)

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return err
	}

	responseBody, err := r.bodyReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return crud.ErrNotFound
	}

	if !statusOK(resp) {
		return makeClientErrUnexpectedResponse(req, resp, responseBody)
	}

	if len(responseBody) != 0 {
		var got ENT
		if err := cod.Unmarshal(responseBody, &got); err != nil {
			return err
		}
		*ptr = got
		return nil
	}

	got, found, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return crud.ErrNotFound
	}

	*ptr = got
	return nil
}

// UpdateMany replaces a batch of remote entities with a single request to the base endpoint.
// Every entity must carry its identifier.
// The result contains the updated representations in the order the server returned them.
func (r RestClient[ENT, ID]) UpdateMany(ctx context.Context, ents []ENT) ([]ENT, error) {
	ctx = r.withContext(ctx)

	for i, ent := range ents {
		if _, ok := r.lookupID(ent); !ok {
			return nil, fmt.Errorf("missing %s in %s at index %d",
				reflectkit.TypeOf[ID]().String(), reflectkit.TypeOf[ENT]().String(), i)
		}
	}

	baseURL, err := r.ResourceURL(ctx)
	if err != nil {
		return nil, err
	}

	mediaType := r.getMediaType()
	cod := r.getCodec(mediaType)

	data, err := cod.Marshal(ents)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, pathkit.Join(baseURL, "/"), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set(headerKeyContentType, mediaType)
	req.Header.Set(headerKeyAccept, mediaType)

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}

	responseBody, err := r.bodyReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, crud.ErrNotFound
	}

	if !statusOK(resp) {
		return nil, makeClientErrUnexpectedResponse(req, resp, responseBody)
	}

	cdk, respMediaType, ok := r.contentTypeBasedCodec(resp)
	if !ok {
		return nil, fmt.Errorf("no codec configured for response content type: %s", respMediaType)
	}

	var got []ENT
	if err := cdk.Unmarshal(responseBody, &got); err != nil {
		return nil, err
	}

	return got, nil
}

// DeleteByID removes the entity that belongs to the given identifier from the remote resource.
func (r RestClient[ENT, ID]) DeleteByID(ctx context.Context, id ID) error {
	ctx = r.withContext(ctx)

	requestURL, err := r.EntityURL(ctx, id)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, requestURL, nil)
	if err != nil {
		return err
	}

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return err
	}

	responseBody, err := r.bodyReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return crud.ErrNotFound
	}

	if !statusOK(resp) {
		return makeClientErrUnexpectedResponse(req, resp, responseBody)
	}

	return nil
}

// DeleteAll removes every entity of the remote resource.
func (r RestClient[ENT, ID]) DeleteAll(ctx context.Context) error {
	ctx = r.withContext(ctx)

	baseURL, err := r.ResourceURL(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, baseURL, nil)
	if err != nil {
		return err
	}

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return err
	}

	responseBody, err := r.bodyReadAll(resp.Body)
	if err != nil {
		return err
	}

	if !statusOK(resp) {
		return makeClientErrUnexpectedResponse(req, resp, responseBody)
	}

	return nil
}

// ResourceURL resolves the base endpoint template with the path parameters of the context.
// It fails with pathkit.ErrMissingParam when a placeholder has no value.
func (r RestClient[ENT, ID]) ResourceURL(ctx context.Context) (string, error) {
	return pathkit.Subst(r.BaseURL, PathParams(ctx))
}

// EntityURL resolves the endpoint of a single entity, addressed by its identifier.
func (r RestClient[ENT, ID]) EntityURL(ctx context.Context, id ID) (string, error) {
	baseURL, err := r.ResourceURL(ctx)
	if err != nil {
		return "", err
	}
	pathParamID, err := r.IDConverter.FormatID(id)
	if err != nil {
		return "", err
	}
	return pathkit.Join(baseURL, pathParamID), nil
}

func (r RestClient[ENT, ID]) lookupID(ent ENT) (ID, bool) {
	if r.LookupID != nil {
		return r.LookupID(ent)
	}
	return extid.Lookup[ID](ent)
}

func (r RestClient[ENT, ID]) withContext(ctx context.Context) context.Context {
	if r.WithContext != nil {
		return r.WithContext(ctx)
	}
	return ctx
}

func (r RestClient[ENT, ID]) httpClient() *http.Client {
	return zerokit.Coalesce(r.HTTPClient, &DefaultRestClientHTTPClient)
}

func (r RestClient[ENT, ID]) getMediaType() mediatype.MediaType {
	return zerokit.Coalesce(r.MediaType, defaultCodec.MediaType)
}

func (r RestClient[ENT, ID]) getCodec(mediaType mediatype.MediaType) codec.Codec {
	if c, ok := r.MediaTypeCodecs.Lookup(mediaType); ok {
		return c
	}
	if r.Codec != nil {
		return r.Codec
	}
	return defaultCodec.Codec
}

func (r RestClient[ENT, ID]) contentTypeBasedCodec(resp *http.Response) (codec.Codec, mediatype.MediaType, bool) {
	mt := resp.Header.Get(headerKeyContentType)
	if mt == "" {
		mt = r.getMediaType()
	}
	c, ok := r.MediaTypeCodecs.Lookup(mt)
	if !ok && r.Codec != nil {
		c, ok = r.Codec, true
	}
	return c, mt, ok
}

func (r RestClient[ENT, ID]) bodyReadAll(body io.ReadCloser) (_ []byte, rErr error) {
	defer errorkit.Finish(&rErr, body.Close)
	limit := zerokit.Coalesce(r.BodyReadLimit, DefaultBodyReadLimit)
	if limit < 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, int64(limit)))
	if err != nil {
		return nil, err
	}
	return data, nil
}

func statusOK(resp *http.Response) bool {
	return intWithin(resp.StatusCode, 200, 299)
}

func intWithin(got, min, max int) bool {
	return min <= got && got <= max
}

func makeClientErrUnexpectedResponse(req *http.Request, resp *http.Response, body []byte) ClientErrUnexpectedResponse {
	return ClientErrUnexpectedResponse{
		StatusCode:    resp.StatusCode,
		Body:          string(body),
		RequestMethod: req.Method,
		RequestURL:    req.URL,
	}
}

// ClientErrUnexpectedResponse is returned when the server replies
// with a status code the client has no defined behaviour for.
type ClientErrUnexpectedResponse struct {
	StatusCode    int
	Body          string
	RequestMethod string
	RequestURL    *url.URL
}

func (err ClientErrUnexpectedResponse) Error() string {
	msg := "unexpected response received"
	if err.StatusCode != 0 {
		msg += fmt.Sprintf("\n%d %s", err.StatusCode, http.StatusText(err.StatusCode))
	}
	if err.RequestURL != nil {
		msg += fmt.Sprintf("\n%s %s", err.RequestMethod, err.RequestURL.String())
	}
	if err.Body != "" {
		msg += fmt.Sprintf("\n\n%s", err.Body)
	}
	return msg
}
