// pkg/comm/comm.go

// Package comm provides the collective operations a group of cooperating
// workers needs: every worker knows its rank in 0..size-1 and can take part
// in a sum reduction whose result is delivered to all of them.
//
// Collectives are matched by call order: every rank must invoke the same
// sequence of collectives. A failing worker calls Abort so the others stop
// waiting for a contribution that will never arrive.
package comm

import (
	"context"
	"errors"
	"fmt"

	"ParIO/pkg/utils"
)

var logger = utils.GetLogger("pario")

var (
	// ErrAborted is returned by collectives of a group that was aborted.
	ErrAborted = errors.New("worker group aborted")
	// ErrMismatch means the ranks disagreed on the kind of a collective.
	ErrMismatch = errors.New("mismatched collective")
)

// Identity names one worker: its rank, 0 <= rank < size, in a group of size.
type Identity interface {
	Rank() int
	Size() int
}

// Communicator is one worker's handle on its group.
type Communicator interface {
	Identity
	// AllreduceSum contributes v and blocks until the sum over all ranks
	// is known, which it returns to every rank.
	AllreduceSum(ctx context.Context, v int64) (int64, error)
	AllreduceFloat64(ctx context.Context, v float64) (float64, error)
	// Barrier blocks until every rank has reached it.
	Barrier(ctx context.Context) error
	// Abort fails the pending and future collectives of every rank.
	Abort(err error)
	Close() error
}

type abortError struct {
	rank  int
	cause error
}

func (e *abortError) Error() string {
	if e.rank < 0 {
		return fmt.Sprintf("%s: %s", ErrAborted, e.cause)
	}
	return fmt.Sprintf("%s by rank %d: %s", ErrAborted, e.rank, e.cause)
}

func (e *abortError) Unwrap() []error {
	return []error{ErrAborted, e.cause}
}

// Aborted wraps cause so that it matches both ErrAborted and cause.
func Aborted(rank int, cause error) error {
	if cause == nil {
		cause = errors.New("unknown reason")
	}
	var ae *abortError
	if errors.As(cause, &ae) {
		return ae
	}
	return &abortError{rank, cause}
}

type fixed struct {
	rank, size int
}

func (f fixed) Rank() int { return f.rank }
func (f fixed) Size() int { return f.size }

// Fixed returns a bare identity for callers that never reduce, such as
// readers started by an external launcher.
func Fixed(rank, size int) Identity {
	return fixed{rank, size}
}
