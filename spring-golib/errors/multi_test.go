package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendNil(t *testing.T) {
	err := New("error")
	errs := Append(nil, err)
	require.Equal(t, 1, errs.Len())
	require.Equal(t, err, errs.Slice()[0])

	errs = Append(errs, nil)
	require.Equal(t, 1, errs.Len())
}

func TestAppendFlattens(t *testing.T) {
	err0 := New("error0")
	err1 := New("error1")
	err2 := New("error2")

	var inner Errors
	inner = Append(inner, err1)
	inner = Append(inner, err2)

	errs := Append(Append(nil, err0), inner).Slice()
	require.Len(t, errs, 3)
	require.Equal(t, err0, errs[0])
	require.Equal(t, err1, errs[1])
	require.Equal(t, err2, errs[2])
}

func TestCombineNil(t *testing.T) {
	err := New("error")
	require.Equal(t, err, Combine(err, nil))
	require.Equal(t, err, Combine(nil, err))
	require.Nil(t, Combine(nil, nil))
}

func TestCombineBasic(t *testing.T) {
	err0 := New("error0")
	err1 := New("error1")

	errs := Combine(err0, err1).(Errors).Slice()
	require.Len(t, errs, 2)
	require.Equal(t, err0, errs[0])
	require.Equal(t, err1, errs[1])
}

func TestDefer(t *testing.T) {
	closeErr := New("close failed")
	run := func() (err error) {
		defer Defer(&err, func() error { return closeErr })
		return nil
	}
	require.Equal(t, closeErr, run())
}
