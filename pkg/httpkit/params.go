package httpkit

import (
	"context"
	"net/url"
)

type ctxKeyPathParams struct{}

// WithPathParam sets the value of a single path parameter in the context.
// The returned context can resolve a ":name" placeholder of an endpoint template.
func WithPathParam(ctx context.Context, name, value string) context.Context {
	return WithPathParams(ctx, map[string]string{name: value})
}

// WithPathParams merges the given path parameter values into the context.
// Values set later shadow earlier ones on name collision.
func WithPathParams(ctx context.Context, params map[string]string) context.Context {
	merged := make(map[string]string)
	for k, v := range PathParams(ctx) {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return context.WithValue(ctx, ctxKeyPathParams{}, merged)
}

// PathParams returns the path parameter values carried by the context.
// Mutating the returned map doesn't affect the context.
func PathParams(ctx context.Context) map[string]string {
	if ctx == nil {
		return map[string]string{}
	}
	params, ok := ctx.Value(ctxKeyPathParams{}).(map[string]string)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

type ctxKeyQuery struct{}

// WithQuery merges the given query values into the context.
// List style operations append them to the request URL.
func WithQuery(ctx context.Context, query url.Values) context.Context {
	merged := url.Values{}
	if current, ok := LookupQuery(ctx); ok {
		for k, vs := range current {
			merged[k] = append(merged[k], vs...)
		}
	}
	for k, vs := range query {
		merged[k] = append(merged[k], vs...)
	}
	return context.WithValue(ctx, ctxKeyQuery{}, merged)
}

// LookupQuery returns the query values carried by the context.
func LookupQuery(ctx context.Context) (url.Values, bool) {
	if ctx == nil {
		return nil, false
	}
	query, ok := ctx.Value(ctxKeyQuery{}).(url.Values)
	return query, ok
}
