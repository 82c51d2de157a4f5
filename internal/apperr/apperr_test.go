package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := New(KindMissingSource, "no page source specified", nil)
		assert.Equal(t, "no page source specified", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("illegal base64 data at input byte 4")
		err := New(KindDecode, "failed to decode base64", cause)
		assert.Equal(t, "failed to decode base64: illegal base64 data at input byte 4", err.Error())
		assert.ErrorIs(t, err, cause)
	})
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("page 2: %w", New(KindTempFile, "failed to create temp file", nil))

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindTempFile, kind)
	assert.True(t, Is(wrapped, KindTempFile))
	assert.False(t, Is(wrapped, KindUpload))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, Is(nil, KindSpawn))
}
