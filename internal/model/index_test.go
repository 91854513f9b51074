package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIndex(t *testing.T) {
	t.Run("wraparound is normalized and idempotent", func(t *testing.T) {
		for n := 1; n <= 5; n++ {
			for i := -n; i < n; i++ {
				got, err := NormalizeIndex(i, n)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, 0)
				assert.Less(t, got, n)

				again, err := NormalizeIndex(got, n)
				require.NoError(t, err)
				assert.Equal(t, got, again)
			}
		}
	})

	t.Run("negative counts from the end once", func(t *testing.T) {
		got, err := NormalizeIndex(-1, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("out of range is rejected, not clamped", func(t *testing.T) {
		_, err := NormalizeIndex(4, 4)
		assert.Error(t, err)

		_, err = NormalizeIndex(-5, 4)
		assert.Error(t, err)

		var indexErr *ErrIndexOutOfRange
		_, err = NormalizeIndex(7, 2)
		require.ErrorAs(t, err, &indexErr)
		assert.Equal(t, 7, indexErr.Index)
		assert.Equal(t, 2, indexErr.Length)
	})

	t.Run("empty sequence rejects everything", func(t *testing.T) {
		_, err := NormalizeIndex(0, 0)
		assert.Error(t, err)
	})
}
