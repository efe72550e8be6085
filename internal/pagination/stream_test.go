package pagination

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_WalksChain(t *testing.T) {
	first, err := NewIterPage[int](&seq{n: 10}, 3)
	require.NoError(t, err)

	s := NewStream[int](first)
	var numbers []int
	var sizes []int
	for s.Next() {
		numbers = append(numbers, s.Page().Number())
		sizes = append(sizes, len(s.Page().Results()))
	}

	require.NoError(t, s.Err())
	assert.Equal(t, []int{0, 1, 2, 3}, numbers)
	assert.Equal(t, []int{3, 3, 3, 1}, sizes)

	// Exhausted streams stay exhausted.
	assert.False(t, s.Next())
	assert.Nil(t, s.Page())
}

func TestStream_NilFirstPage(t *testing.T) {
	s := NewStream[int](nil)
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
}

func TestStream_AdvancesLazily(t *testing.T) {
	src := &seq{n: 9}
	first, err := NewIterPage[int](src, 3)
	require.NoError(t, err)

	s := NewStream[int](first)
	require.True(t, s.Next())
	// Handing out the first page must not build the second one.
	assert.Equal(t, 4, src.pulled)

	require.True(t, s.Next())
	assert.Equal(t, 7, src.pulled)
}

func TestStream_SurfacesChainError(t *testing.T) {
	first, err := NewIterPage(failingAfter(4), 2)
	require.NoError(t, err)

	s := NewStream[int](first)
	count := 0
	for s.Next() {
		count++
	}

	assert.Equal(t, 1, count)
	assert.ErrorIs(t, s.Err(), errBroken)
}

func TestForEach_StopsOnCallbackError(t *testing.T) {
	first, err := NewIterPage[int](&seq{n: 20}, 5)
	require.NoError(t, err)

	stop := errors.New("stop")
	seen := 0
	err = ForEach[int](first, func(p Page[int]) error {
		seen++
		if p.Number() == 1 {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}

func TestCollectAndFlatten(t *testing.T) {
	first, err := NewIterPage[int](&seq{n: 7}, 2)
	require.NoError(t, err)

	all, err := Collect[int](first)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, all)

	again, err := NewIterPage[int](&seq{n: 7}, 2)
	require.NoError(t, err)
	flat, err := Drain(Flatten[int](again))
	require.NoError(t, err)
	assert.Equal(t, all, flat)

	empty, err := Collect(Single[int](nil))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
