// Package errorkit contains error handling helpers
// for working with errors as constants and as merged values.
package errorkit

import (
	"errors"
	"fmt"
)

// Error is an implementation of the error interface,
// that allows you to declare sentinel errors as exported constants.
//
//	const ErrSomething errorkit.Error = "something went wrong"
type Error string

// Error implements the error interface.
func (err Error) Error() string { return string(err) }

// Wrap bundles another error value together with this Error,
// and returns an error value that matches both of them with errors.Is.
func (err Error) Wrap(oth error) error {
	if oth == nil {
		return err
	}
	return wrapped{Owner: err, Cause: oth}
}

// F formats an error value that belongs to this Error.
func (err Error) F(format string, a ...any) error {
	return err.Wrap(fmt.Errorf(format, a...))
}

type wrapped struct {
	Owner Error
	Cause error // must be not nil
}

func (w wrapped) Error() string {
	return fmt.Sprintf("[%s] %s", w.Owner, w.Cause.Error())
}

func (w wrapped) Is(target error) bool {
	return w.Owner == target
}

func (w wrapped) Unwrap() error {
	return w.Cause
}

// Merge will combine all given non nil error values into a single error value.
// If no valid error is given, nil is returned.
// If only a single non nil error value is given, that error value is returned.
func Merge(errs ...error) error {
	var cleaned []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		cleaned = append(cleaned, err)
	}
	switch len(cleaned) {
	case 0:
		return nil
	case 1:
		return cleaned[0]
	default:
		return errors.Join(cleaned...)
	}
}

// Finish is a helper function that can be used from a deferred context.
//
// Usage:
//
//	defer errorkit.Finish(&returnError, resp.Body.Close)
func Finish(returnErr *error, blk func() error) {
	*returnErr = Merge(*returnErr, blk())
}

// Recover will capture a panic value from the current goroutine
// and turn it into the error return value of the enclosing function.
//
// Usage:
//
//	defer errorkit.Recover(&returnError)
func Recover(returnErr *error) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case error:
		*returnErr = v
	default:
		*returnErr = fmt.Errorf("%v", v)
	}
}
