package iterkit_test

import (
	"errors"
	"testing"

	"go.llib.dev/testcase/assert"

	"go.llib.dev/hookit/pkg/iterkit"
)

func TestCollectE(t *testing.T) {
	t.Run("collects every element in order", func(t *testing.T) {
		vs, err := iterkit.CollectE(iterkit.FromSlice([]int{1, 2, 3}))
		assert.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, vs)
	})
	t.Run("stops at the first failed element", func(t *testing.T) {
		expErr := errors.New("boom")
		itr := func(yield func(int, error) bool) {
			if !yield(1, nil) {
				return
			}
			yield(0, expErr)
		}
		vs, err := iterkit.CollectE[int](itr)
		assert.ErrorIs(t, err, expErr)
		assert.Equal(t, []int{1}, vs)
	})
	t.Run("empty sequence", func(t *testing.T) {
		vs, err := iterkit.CollectE(iterkit.Empty[int]())
		assert.NoError(t, err)
		assert.Empty(t, vs)
	})
}

func TestError(t *testing.T) {
	expErr := errors.New("boom")
	_, err := iterkit.CollectE(iterkit.Error[string](expErr))
	assert.ErrorIs(t, err, expErr)
}

func TestCountE(t *testing.T) {
	n, err := iterkit.CountE(iterkit.FromSlice([]string{"a", "b"}))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}
