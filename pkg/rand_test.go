package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandString(t *testing.T) {
	for _, length := range []int{0, 1, 8, 40} {
		assert.Len(t, RandString(length), length)
	}

	// Two draws of a non-trivial length should differ.
	assert.NotEqual(t, RandString(20), RandString(20))
}
