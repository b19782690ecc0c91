package bufman

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialJump(t *testing.T) {
	assert := assert.New(t)
	b := New[*int](nil)
	assert.NoError(b.Grow(1))
	assert.Equal(0, b.Len())
	n := 7
	assert.NoError(b.Put(0, &n))
	assert.Equal(1, b.Len())
	assert.Equal(&n, b.Get(0))
}

func TestGrowDoubles(t *testing.T) {
	assert := assert.New(t)
	b := New[int](nil)
	assert.NoError(b.Grow(101)) // 100 → 200
	for i := 0; i < 150; i++ {
		assert.NoError(b.Put(i, i*i))
	}
	assert.Equal(150, b.Len())
	assert.Equal(49, b.Get(7))
}

func TestZeroInitializedTail(t *testing.T) {
	assert := assert.New(t)
	b := New[*int](nil)
	n := 1
	assert.NoError(b.Put(40, &n))
	assert.Equal(41, b.Len())
	for i := 0; i < 40; i++ {
		assert.Nil(b.Get(i))
	}
}

func TestAppend(t *testing.T) {
	assert := assert.New(t)
	b := New[string](nil)
	i, err := b.Append("a")
	assert.NoError(err)
	assert.Equal(0, i)
	i, err = b.Append("b")
	assert.NoError(err)
	assert.Equal(1, i)
	assert.Equal([]string{"a", "b"}, b.Slots())
}

func TestFreeAll(t *testing.T) {
	assert := assert.New(t)
	freed := 0
	b := New[*int](func(p *int) {
		if p != nil {
			freed++
		}
	})
	n, m := 1, 2
	assert.NoError(b.Put(0, &n))
	assert.NoError(b.Put(2, &m)) // slot 1 stays nil
	b.FreeAll()
	assert.Equal(2, freed)
	assert.Equal(0, b.Len())
	assert.Nil(b.Get(0))
}

func TestGetOutOfRange(t *testing.T) {
	assert := assert.New(t)
	b := New[int](nil)
	assert.Equal(0, b.Get(5))
	assert.Equal(0, b.Get(-1))
}
