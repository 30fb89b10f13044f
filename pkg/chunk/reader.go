// pkg/chunk/reader.go

package chunk

import (
	"context"
	"io"

	"ParIO/pkg/object"
)

// OpenForRead opens path in store for reading by the worker id.
func OpenForRead(store object.Storage, path string, itemSize int, id Identity) (*Channel, error) {
	c, err := newChannel(path, itemSize, id)
	if err != nil {
		return nil, err
	}
	f, err := store.Open(path)
	if err != nil {
		return nil, &IOError{"open", path, err}
	}
	c.file = f
	logger.Debugf("rank %d/%d opened %s%s for reading", c.rank, c.size, store, path)
	return c, nil
}

// ReadChunk reads the items owned by this worker. Workers do not coordinate,
// but all of them see the same file size and so agree on the partition.
func (c *Channel) ReadChunk(ctx context.Context) ([]byte, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	size, err := c.file.Size()
	if err != nil {
		return nil, &IOError{"stat", c.name, err}
	}
	isz := int64(c.itemSize)
	if size%isz != 0 {
		return nil, errorf(ErrFormat, "size of %s is %d, not a multiple of %d", c.name, size, isz)
	}
	part, err := c.locate(size/isz, -1)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, part.Len()*isz)
	n, err := c.file.ReadAt(buf, part.Start*isz)
	if n == len(buf) && (err == nil || err == io.EOF) {
		logger.Tracef("rank %d read %d bytes of %s at %d", c.rank, n, c.name, part.Start*isz)
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, &IOError{"read", c.name, err}
}
