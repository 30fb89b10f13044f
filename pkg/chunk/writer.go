// pkg/chunk/writer.go

package chunk

import (
	"context"

	"ParIO/pkg/object"
)

// OpenForWrite opens path in store for writing, creating it if needed. The
// content is only discarded by WriteChunk.
func OpenForWrite(store object.Storage, path string, itemSize int, r Reducer) (*Channel, error) {
	c, err := newChannel(path, itemSize, r)
	if err != nil {
		return nil, err
	}
	f, err := store.Create(path)
	if err != nil {
		return nil, &IOError{"create", path, err}
	}
	c.file = f
	c.reducer = r
	logger.Debugf("rank %d/%d opened %s%s for writing", c.rank, c.size, store, path)
	return c, nil
}

// WriteChunk replaces the content of the file with the chunks of all the
// workers, placed in rank order. It is a collective: every worker of the
// group must call it, and it returns once the group agreed on the total
// number of items. buf must hold exactly the items Partition assigns to this
// worker for that total.
func (c *Channel) WriteChunk(ctx context.Context, buf []byte) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	isz := int64(c.itemSize)
	if int64(len(buf))%isz != 0 {
		return errorf(ErrFormat, "%d bytes is not a multiple of %d", len(buf), isz)
	}
	count := int64(len(buf)) / isz

	// every worker truncates before the reduction, so no truncation can
	// follow a write of another worker
	if err := c.file.Truncate(0); err != nil {
		return &IOError{"truncate", c.name, err}
	}
	total, err := c.reducer.AllreduceSum(ctx, count)
	if err != nil {
		return err
	}
	part, err := c.locate(total, count)
	if err != nil {
		return err
	}
	if part.Len() != count {
		logger.Warnf("rank %d writes %d items of %s at item %d but owns %d", c.rank, count, c.name, part.Start, part.Len())
	}
	if count == 0 {
		return nil
	}

	if pa, ok := c.file.(object.Preallocator); ok {
		if err := pa.Preallocate(total * isz); err != nil {
			return &IOError{"preallocate", c.name, err}
		}
	}
	n, err := c.file.WriteAt(buf, part.Start*isz)
	if err == nil && n != len(buf) {
		err = errShortWrite
	}
	if err != nil {
		return &IOError{"write", c.name, err}
	}
	logger.Tracef("rank %d wrote %d bytes of %s at %d", c.rank, n, c.name, part.Start*isz)
	return nil
}
