package vstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func opts(size int) Options {
	return Options{ElementSize: size}
}

func TestNewRejectsZeroElementSize(t *testing.T) {
	assert := assert.New(t)
	var failed error
	o := opts(0)
	o.OnFailure = func(_ interface{}, err error) { failed = err }
	s, err := New(o)
	assert.Nil(s)
	assert.ErrorIs(err, ErrElementSize)
	assert.ErrorIs(failed, ErrElementSize)
}

func TestPushPopSize(t *testing.T) {
	assert := assert.New(t)
	s, err := New(opts(4))
	assert.NoError(err)
	assert.Equal(0, s.Size())
	assert.NoError(s.Push([]byte{1, 2, 3, 4}))
	assert.Equal(1, s.Size())
	assert.NoError(s.Push(nil)) // null slot
	assert.Equal(2, s.Size())
	elem, err := s.Pop()
	assert.NoError(err)
	assert.Nil(elem)
	assert.Equal(1, s.Size())
	elem, err = s.Pop()
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3, 4}, elem)
	assert.Equal(0, s.Size())
	_, err = s.Pop()
	assert.ErrorIs(err, ErrEmpty)
}

func TestPushGrowsAllocation(t *testing.T) {
	assert := assert.New(t)
	s, err := New(opts(1))
	assert.NoError(err)
	for i := 0; i < 100; i++ {
		assert.NoError(s.Push([]byte{byte(i)}))
	}
	assert.Equal(100, s.Size())
	for i := 99; i >= 0; i-- {
		elem, err := s.Pop()
		assert.NoError(err)
		assert.Equal([]byte{byte(i)}, elem)
	}
}

func TestGetSetBytewise(t *testing.T) {
	assert := assert.New(t)
	o := opts(3)
	o.GrowOnGet = true
	o.GrowOnSet = true
	s, err := New(o)
	assert.NoError(err)
	x := []byte{7, 8, 9}
	assert.NoError(s.Set(5, x))
	assert.Equal(6, s.Size())
	got, err := s.Get(5)
	assert.NoError(err)
	assert.Equal(x, got)
	got, err = s.Get(2) // null slot in the grown range
	assert.NoError(err)
	assert.Nil(got)
	// the stack owns a copy, mutating the original must not show through
	x[0] = 42
	got, _ = s.Get(5)
	assert.Equal(byte(7), got[0])
}

func TestOutOfRangeWithoutGrowth(t *testing.T) {
	assert := assert.New(t)
	s, err := New(opts(2))
	assert.NoError(err)
	_, err = s.Get(0)
	assert.ErrorIs(err, ErrOutOfRange)
	err = s.Set(0, []byte{1, 2})
	assert.ErrorIs(err, ErrOutOfRange)
}

func TestSetFreesOldElement(t *testing.T) {
	assert := assert.New(t)
	freed := 0
	o := opts(2)
	o.GrowOnSet = true
	o.Free = func(_ interface{}, elem []byte) bool {
		freed++
		return true
	}
	s, err := New(o)
	assert.NoError(err)
	assert.NoError(s.Set(0, []byte{1, 1}))
	assert.NoError(s.Set(0, []byte{2, 2}))
	assert.Equal(1, freed)
	s.Destroy()
	assert.Equal(2, freed)
}

func TestCopyCallbackSeesOwnedCopy(t *testing.T) {
	assert := assert.New(t)
	copies := 0
	o := opts(2)
	o.Copy = func(_ interface{}, dst, src []byte) bool {
		copies++
		assert.Equal(src, dst)
		return true
	}
	s, err := New(o)
	assert.NoError(err)
	assert.NoError(s.Push([]byte{3, 4}))
	assert.Equal(1, copies)
}

func TestUserDataReachesCallbacks(t *testing.T) {
	assert := assert.New(t)
	o := opts(1)
	o.UserData = "hello"
	var seen interface{}
	o.Free = func(userdata interface{}, _ []byte) bool {
		seen = userdata
		return true
	}
	s, err := New(o)
	assert.NoError(err)
	assert.NoError(s.Push([]byte{1}))
	s.Destroy()
	assert.Equal("hello", seen)
}
