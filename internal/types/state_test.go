package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriState(t *testing.T) {
	value, known := TriTrue.Bool()
	assert.True(t, value)
	assert.True(t, known)

	value, known = TriFalse.Bool()
	assert.False(t, value)
	assert.True(t, known)

	_, known = TriNoEntities.Bool()
	assert.False(t, known)
	assert.False(t, TriNoEntities.Known())

	assert.Equal(t, TriTrue, TriFromBool(true))
	assert.Equal(t, TriFalse, TriFromBool(false))
}

func TestResult(t *testing.T) {
	ok := Ok([]uint64{1, 2})
	assert.True(t, ok.IsOk())
	assert.Equal(t, []uint64{1, 2}, ok.Value())
	assert.NoError(t, ok.Err())

	// A failed read is distinct from an empty successful one.
	failed := Err[[]uint64](errors.New("boom"))
	assert.False(t, failed.IsOk())
	assert.Error(t, failed.Err())

	empty := Ok([]uint64{})
	assert.True(t, empty.IsOk())
	assert.Empty(t, empty.Value())
}

func TestErrorHelpers(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NoFallbackError{Identity: "addr1", Err: cause}

	require.True(t, IsNoFallbackError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "addr1")

	assert.False(t, IsNoFallbackError(cause))
}
