// pkg/object/interface.go

package object

import (
	"fmt"
	"io"
	"strings"

	"ParIO/pkg/utils"
)

var logger = utils.GetLogger("pario")

// File is an open file that supports positioned reads and writes.
type File interface {
	io.ReaderAt
	io.WriterAt
	// Size returns the current size of the file in bytes.
	Size() (int64, error)
	Truncate(size int64) error
	Name() string
	Close() error
}

// Preallocator is implemented by files that can reserve space up front.
type Preallocator interface {
	Preallocate(size int64) error
}

// Storage opens files shared by all the workers of a group.
type Storage interface {
	String() string
	// Open opens an existing file for reading.
	Open(path string) (File, error)
	// Create opens a file for writing, creating it if it does not exist.
	// The content of an existing file is kept.
	Create(path string) (File, error)
}

type Creator func(addr string) (Storage, error)

var storages = make(map[string]Creator)

// Register makes a storage backend available under name.
func Register(name string, create Creator) {
	storages[name] = create
}

// CreateStorage returns the storage registered as name, configured by addr.
func CreateStorage(name, addr string) (Storage, error) {
	if create, ok := storages[strings.ToLower(name)]; ok {
		return create(addr)
	}
	return nil, fmt.Errorf("invalid storage: %s", name)
}
