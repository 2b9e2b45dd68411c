// Package previewfence decides which in-flight preview generation is allowed
// to commit its result. Only the most recently begun request that has not been
// invalidated by a configuration change may apply success, error or loading
// transitions; everything else is discarded on arrival.
package previewfence

import "sync/atomic"

// Token identifies one preview request.
type Token struct {
	seq uint64
}

func (t Token) Sequence() uint64 {
	return t.seq
}

type Controller struct {
	counter atomic.Uint64
}

func NewController() *Controller {
	return &Controller{}
}

// BeginRequest starts a new request. Any token handed out before it becomes stale.
func (c *Controller) BeginRequest() Token {
	return Token{seq: c.counter.Add(1)}
}

func (c *Controller) IsStillCurrent(t Token) bool {
	return t.seq != 0 && c.counter.Load() == t.seq
}

// InvalidateAll marks every outstanding token stale. Called on every configuration change.
func (c *Controller) InvalidateAll() {
	c.counter.Add(1)
}

func (c *Controller) Current() uint64 {
	return c.counter.Load()
}
