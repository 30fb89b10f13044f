// pkg/chunk/channel.go

// Package chunk moves a flat binary file of fixed-size items between storage
// and a group of workers. Every worker of the group owns one contiguous
// chunk of items, computed by Partition from its rank and the group size,
// and transfers exactly that chunk with a single positioned read or write.
package chunk

import (
	"context"
	"math"
	"sync"

	"ParIO/pkg/object"
	"ParIO/pkg/utils"
)

var logger = utils.GetLogger("pario")

// Identity is the rank of a worker in a group of Size workers.
type Identity interface {
	Rank() int
	Size() int
}

// Reducer is an Identity that can take part in a sum over the group.
type Reducer interface {
	Identity
	AllreduceSum(ctx context.Context, v int64) (int64, error)
}

// Channel is one worker's view of a file shared by the group. The layout
// accessors are populated by the first transfer.
type Channel struct {
	name     string
	itemSize int
	rank     int
	size     int
	file     object.File
	reducer  Reducer

	mu       sync.Mutex
	closed   bool
	total    int64
	fileSize int64
	part     Range
	count    int64
}

func newChannel(name string, itemSize int, id Identity) (*Channel, error) {
	if itemSize <= 0 {
		return nil, errorf(ErrConfig, "item size %d", itemSize)
	}
	if id == nil || id.Size() < 1 || id.Rank() < 0 || id.Rank() >= id.Size() {
		return nil, errorf(ErrConfig, "invalid worker identity for %s", name)
	}
	return &Channel{
		name:     name,
		itemSize: itemSize,
		rank:     id.Rank(),
		size:     id.Size(),
	}, nil
}

func (c *Channel) Name() string {
	return c.name
}

func (c *Channel) Rank() int {
	return c.rank
}

func (c *Channel) Size() int {
	return c.size
}

func (c *Channel) ItemSize() int {
	return c.itemSize
}

// NumItems returns the number of items in the whole file.
func (c *Channel) NumItems() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Channel) FileSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileSize
}

// ChunkSize returns the number of items this worker transferred. It is the
// length of Partition unless WriteChunk was given a buffer of another size.
func (c *Channel) ChunkSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// FirstItem returns the index of the first item owned by this worker.
func (c *Channel) FirstItem() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.part.Start
}

// ByteOffset returns where this worker's chunk starts in the file.
func (c *Channel) ByteOffset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.part.Start * int64(c.itemSize)
}

func (c *Channel) Partition() Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.part
}

// locate computes the chunk of this worker in a file of total items, of
// which count are transferred by this worker. Nothing is recorded on failure.
func (c *Channel) locate(total, count int64) (Range, error) {
	if total > math.MaxInt64/int64(c.itemSize) {
		return Range{}, errorf(ErrConfig, "%d items of %d bytes overflow the file offsets", total, c.itemSize)
	}
	part, err := Partition(c.rank, c.size, total)
	if err != nil {
		return Range{}, err
	}
	if count < 0 {
		count = part.Len()
	}
	c.mu.Lock()
	c.total = total
	c.fileSize = total * int64(c.itemSize)
	c.part = part
	c.count = count
	c.mu.Unlock()
	return part, nil
}

func (c *Channel) check(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errorf(ErrClosed, "%s", c.name)
	}
	return ctx.Err()
}

// Close releases the file. Closing twice returns ErrClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errorf(ErrClosed, "%s", c.name)
	}
	c.closed = true
	c.mu.Unlock()
	if err := c.file.Close(); err != nil {
		return &IOError{"close", c.name, err}
	}
	return nil
}
