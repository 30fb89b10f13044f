// pkg/utils/cond.go

package utils

import (
	"context"
	"sync"
)

// Cond is similar to sync.Cond, but waiters can give up when their context
// is done. Broadcast must be called with L held.
type Cond struct {
	L      sync.Locker
	signal chan struct{}
}

// Broadcast wakes up all the waiters.
func (c *Cond) Broadcast() {
	close(c.signal)
	c.signal = make(chan struct{})
}

// WaitContext waits for a signal or for ctx to be done, in which case it
// returns ctx.Err().
func (c *Cond) WaitContext(ctx context.Context) error {
	ch := c.signal
	c.L.Unlock()
	defer c.L.Lock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewCond creates a Cond.
func NewCond(lock sync.Locker) *Cond {
	return &Cond{lock, make(chan struct{})}
}
