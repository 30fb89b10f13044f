// pkg/chunk/partition.go

package chunk

import (
	"github.com/pkg/errors"
)

// Range is the half-open interval of item indices [Start, Stop).
type Range struct {
	Start int64
	Stop  int64
}

func (r Range) Len() int64 {
	return r.Stop - r.Start
}

// Partition returns the items owned by rank when total items are split
// among size workers. The first total%size ranks get one item more than the
// others, the ranges are contiguous, and together they cover every item
// exactly once. Every rank must own at least one item, so size may not
// exceed total.
func Partition(rank, size int, total int64) (Range, error) {
	if size < 1 {
		return Range{}, errors.Wrapf(ErrConfig, "group size %d", size)
	}
	if rank < 0 || rank >= size {
		return Range{}, errors.Wrapf(ErrConfig, "rank %d out of [0, %d)", rank, size)
	}
	if int64(size) > total {
		return Range{}, errors.Wrapf(ErrConfig, "%d workers for %d items", size, total)
	}
	p, r := int64(size), int64(rank)
	base, rem := total/p, total%p
	if rem != 0 {
		base++
	}
	if rem == 0 || r < rem {
		return Range{r * base, (r + 1) * base}, nil
	}
	start := rem*base + (r-rem)*(base-1)
	return Range{start, start + base - 1}, nil
}

// Partitions returns the range of every rank in order.
func Partitions(size int, total int64) ([]Range, error) {
	if size < 1 {
		return nil, errors.Wrapf(ErrConfig, "group size %d", size)
	}
	parts := make([]Range, size)
	for i := range parts {
		var err error
		if parts[i], err = Partition(i, size, total); err != nil {
			return nil, err
		}
	}
	return parts, nil
}
