// pkg/chunk/errors.go

package chunk

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfig reports an invalid rank, group size or item size.
	ErrConfig = errors.New("invalid configuration")
	// ErrIO reports a failed open, stat, read or write.
	ErrIO = errors.New("io error")
	// ErrFormat means the data is not a whole number of items.
	ErrFormat = errors.New("invalid format")
	// ErrClosed is returned by a channel that was closed.
	ErrClosed = errors.New("channel closed")
)

// IOError is the failure of a storage operation on Path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func errorf(sentinel error, format string, args ...interface{}) error {
	return errors.Wrapf(sentinel, format, args...)
}

var errShortWrite = errors.New("short write")
