// pkg/comm/run.go

package comm

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

type runtimeError struct{ error }

func (runtimeError) RuntimeError() {}

// wrapPanic adds stack trace information to a recovered panic.
func wrapPanic(p interface{}) interface{} {
	s := fmt.Sprintf("%v\n%s\nrethrown at", p, debug.Stack())
	if _, isError := p.(error); isError {
		r := errors.New(s)
		if _, isRuntimeError := p.(runtime.Error); isRuntimeError {
			return runtimeError{r}
		}
		return r
	}
	return s
}

// Run starts size workers in a new Group, one goroutine per rank, and waits
// until all of them returned.
//
// The first worker that fails aborts the group and cancels the context
// passed to the others, and Run returns that first failure, wrapped so it
// matches ErrAborted. If one or more workers panic, Run panics with the
// panic value of the lowest rank once every worker has returned.
func Run(ctx context.Context, size int, fn func(ctx context.Context, c Communicator) error) error {
	g := NewGroup(size)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	panics := make([]interface{}, size)
	var wg sync.WaitGroup
	wg.Add(size)
	for rank := 0; rank < size; rank++ {
		go func(rank int) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					panics[rank] = wrapPanic(p)
					g.abort(rank, fmt.Errorf("panic: %v", p))
					cancel()
				}
			}()
			if err := fn(ctx, g.Member(rank)); err != nil {
				g.abort(rank, err)
				cancel()
			}
		}(rank)
	}
	wg.Wait()
	for _, p := range panics {
		if p != nil {
			panic(p)
		}
	}
	return g.Err()
}
