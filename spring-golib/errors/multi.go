package errors

import (
	"bytes"
	"fmt"
)

// Errors is a list of errors; a non-nil Errors always holds at least one
// non-nil error, so callers may compare an Errors with nil to check for
// the absence of errors.
type Errors interface {
	error
	// Slice returns a copy of the underlying (non-empty) slice of errors.
	Slice() []error
	// Len is always > 0 for a non-nil Errors.
	Len() int

	sealed()
}

type errorSlice []error

func (m errorSlice) sealed() {}

func (m errorSlice) Slice() []error {
	return append([]error(nil), m...)
}

func (m errorSlice) Len() int {
	return len(m)
}

func (m errorSlice) Error() string {
	var b bytes.Buffer
	for i, err := range m {
		if i > 0 {
			fmt.Fprint(&b, "\n")
		}
		fmt.Fprint(&b, err)
	}
	return b.String()
}

// Append appends the given (possibly nil) error to the given (possibly nil) Errors.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	var slice errorSlice
	if errs != nil {
		slice = errorSlice(errs.(errorSlice))
	}
	if multi, _ := err.(Errors); multi != nil {
		return errorSlice(append(slice, errorSlice(multi.(errorSlice))...))
	}
	return errorSlice(append(slice, err))
}

// Combine combines errors e & f into a single error
func Combine(e, f error) error {
	if e == nil {
		return f
	}
	if f == nil {
		return e
	}
	var errs Errors
	errs = Append(errs, e)
	errs = Append(errs, f)
	return errs
}

// Defer is a helper for deferring error-returning cleanup functions
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
