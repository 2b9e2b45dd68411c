package previewfence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidateBetweenRequests(t *testing.T) {
	c := NewController()
	a := c.BeginRequest()
	require.True(t, c.IsStillCurrent(a))

	c.InvalidateAll()
	b := c.BeginRequest()

	assert.False(t, c.IsStillCurrent(a))
	assert.True(t, c.IsStillCurrent(b))
}

func TestNewerRequestSupersedesOlder(t *testing.T) {
	c := NewController()
	a := c.BeginRequest()
	b := c.BeginRequest()

	assert.False(t, c.IsStillCurrent(a))
	assert.True(t, c.IsStillCurrent(b))
	assert.Greater(t, b.Sequence(), a.Sequence())
}

func TestInvalidateWithoutNewRequest(t *testing.T) {
	c := NewController()
	a := c.BeginRequest()
	c.InvalidateAll()
	assert.False(t, c.IsStillCurrent(a))
}

func TestZeroTokenIsNeverCurrent(t *testing.T) {
	c := NewController()
	assert.False(t, c.IsStillCurrent(Token{}))
}

func TestAtMostOneCurrentUnderConcurrency(t *testing.T) {
	c := NewController()
	var wg sync.WaitGroup
	tokens := make([]Token, 64)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = c.BeginRequest()
			if i%8 == 0 {
				c.InvalidateAll()
			}
		}(i)
	}
	wg.Wait()

	current := 0
	for _, tok := range tokens {
		if c.IsStillCurrent(tok) {
			current++
		}
	}
	assert.LessOrEqual(t, current, 1)
}
