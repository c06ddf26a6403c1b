package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer(t *testing.T) {
	seq := NewSequencer()

	t1 := seq.Begin()
	require.True(t, seq.IsCurrent(t1))

	t2 := seq.Begin()
	assert.Greater(t, t2, t1)
	assert.False(t, seq.IsCurrent(t1))
	assert.True(t, seq.IsCurrent(t2))
}

func TestSequencer_Concurrent(t *testing.T) {
	const goroutines = 64

	seq := NewSequencer()
	tokens := make([]uint64, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i] = seq.Begin()
		}()
	}
	wg.Wait()

	// Every token is unique and exactly one is still current.
	seen := make(map[uint64]bool, goroutines)
	current := 0
	for _, token := range tokens {
		require.False(t, seen[token], "duplicate token %d", token)
		seen[token] = true
		if seq.IsCurrent(token) {
			current++
		}
	}
	assert.Equal(t, 1, current)
}

func TestSequencer_IndependentInstances(t *testing.T) {
	a := NewSequencer()
	b := NewSequencer()

	ta := a.Begin()
	b.Begin()
	b.Begin()

	// Another engine's sequencer never invalidates ours.
	assert.True(t, a.IsCurrent(ta))
}
