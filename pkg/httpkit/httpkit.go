// Package httpkit provides a generic REST client along with
// composable http.RoundTripper middleware.
package httpkit

import (
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"

	"golang.org/x/time/rate"

	"go.llib.dev/hookit/pkg/errorkit"
	"go.llib.dev/hookit/pkg/retry"
)

// RoundTripperFunc adapts a function into an http.RoundTripper.
type RoundTripperFunc func(request *http.Request) (*http.Response, error)

func (fn RoundTripperFunc) RoundTrip(request *http.Request) (*http.Response, error) {
	return fn(request)
}

// RoundTripperFactoryFunc is a constructor function that wraps an http.RoundTripper with a given middleware.
// Its http.RoundTripper argument represents the next middleware http.RoundTripper in the pipeline.
type RoundTripperFactoryFunc func(next http.RoundTripper) http.RoundTripper

// WithRoundTripper combines an http.RoundTripper with a stack of middleware factory functions.
// The execution order is the order in which the factory funcs are passed.
func WithRoundTripper(transport http.RoundTripper, rts ...RoundTripperFactoryFunc) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	for i := len(rts) - 1; 0 <= i; i-- {
		if rts[i] == nil {
			continue
		}
		transport = rts[i](transport)
	}
	return transport
}

// RetryRoundTripper retries requests that failed with a temporary transport error
// or with a status code that signals a temporary server side condition.
type RetryRoundTripper struct {
	// Transport specifies the mechanism by which individual HTTP requests are made.
	//
	// Default: http.DefaultTransport
	Transport http.RoundTripper
	// RetryStrategy will be used to evaluate if a new retry attempt should be done.
	//
	// Default: retry.ExponentialBackoff
	RetryStrategy retry.Strategy
	// OnStatus is an [OPTIONAL] configuration field that can state whether a certain http status code should be retried.
	// The RetryRoundTripper has a default behaviour about which status codes are retried, and OnStatus overrides that.
	OnStatus map[int]bool
}

var temporaryErrorResponseCodes = map[int]struct{}{
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusGatewayTimeout:      {},
	http.StatusServiceUnavailable:  {},
	http.StatusInsufficientStorage: {},
	http.StatusTooManyRequests:     {},
	http.StatusRequestTimeout:      {},
}

func (rt RetryRoundTripper) RoundTrip(request *http.Request) (resp *http.Response, err error) {
	rs := rt.getRetryStrategy()
	body, err := rt.readBody(request)
	if err != nil {
		return nil, err
	}

	for i := 0; rs.ShouldTry(request.Context(), i); i++ {
		// reset the body to its original state before each attempt
		request.Body = io.NopCloser(bytes.NewReader(body))

		resp, err = rt.transport().RoundTrip(request)

		if err != nil {
			if rt.isRetriableError(err) {
				continue
			}
			return resp, err
		}

		if rt.isRetriableStatus(resp.StatusCode) {
			continue
		}

		return resp, nil
	}
	if cerr := request.Context().Err(); cerr != nil {
		return nil, cerr
	}
	return
}

func (rt RetryRoundTripper) isRetriableStatus(code int) bool {
	if rt.OnStatus != nil {
		if should, ok := rt.OnStatus[code]; ok {
			return should
		}
	}
	_, ok := temporaryErrorResponseCodes[code]
	return ok
}

func (rt RetryRoundTripper) transport() http.RoundTripper {
	if rt.Transport == nil {
		return http.DefaultTransport
	}
	return rt.Transport
}

func (rt RetryRoundTripper) readBody(req *http.Request) (_ []byte, rErr error) {
	if req.Body == nil {
		return []byte{}, nil
	}
	defer errorkit.Finish(&rErr, req.Body.Close)
	return io.ReadAll(req.Body)
}

func (rt RetryRoundTripper) isRetriableError(err error) bool {
	return errors.Is(err, http.ErrHandlerTimeout) ||
		errors.Is(err, net.ErrClosed) ||
		isTimeout(err)
}

func (rt RetryRoundTripper) getRetryStrategy() retry.Strategy {
	if rt.RetryStrategy != nil {
		return rt.RetryStrategy
	}
	return retry.ExponentialBackoff{}
}

func isTimeout(err error) bool {
	type errorWithTimeoutInfo interface {
		error
		Timeout() bool
	}
	if v, ok := err.(errorWithTimeoutInfo); ok && v.Timeout() {
		return true
	}
	return false
}

// RateLimitRoundTripper delays requests to keep within the configured request rate.
type RateLimitRoundTripper struct {
	// Transport specifies the mechanism by which individual HTTP requests are made.
	//
	// Default: http.DefaultTransport
	Transport http.RoundTripper
	// Limiter controls the pace of the outgoing requests.
	//
	// Default: no limiting
	Limiter *rate.Limiter
}

func (rt RateLimitRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	if rt.Limiter != nil {
		if err := rt.Limiter.Wait(request.Context()); err != nil {
			return nil, err
		}
	}
	transport := rt.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return transport.RoundTrip(request)
}
