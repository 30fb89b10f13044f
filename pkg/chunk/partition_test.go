// pkg/chunk/partition_test.go

package chunk

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionScenarios(t *testing.T) {
	parts, err := Partitions(3, 10)
	require.NoError(t, err)
	assert.Equal(t, []Range{{0, 4}, {4, 7}, {7, 10}}, parts)

	parts, err = Partitions(4, 8)
	require.NoError(t, err)
	assert.Equal(t, []Range{{0, 2}, {2, 4}, {4, 6}, {6, 8}}, parts)

	parts, err = Partitions(1, 5)
	require.NoError(t, err)
	assert.Equal(t, []Range{{0, 5}}, parts)

	parts, err = Partitions(7, 7)
	require.NoError(t, err)
	for i, p := range parts {
		assert.Equal(t, Range{int64(i), int64(i) + 1}, p)
	}
}

func TestPartitionCoverage(t *testing.T) {
	for total := int64(1); total <= 64; total++ {
		for size := 1; int64(size) <= total; size++ {
			parts, err := Partitions(size, total)
			require.NoError(t, err)
			var next int64
			for rank, p := range parts {
				assert.Equal(t, next, p.Start, "gap before rank %d of %d/%d", rank, total, size)
				assert.GreaterOrEqual(t, p.Len(), int64(1))
				assert.LessOrEqual(t, p.Len()-parts[len(parts)-1].Len(), int64(1))
				// larger chunks come first
				if rank > 0 {
					assert.LessOrEqual(t, p.Len(), parts[rank-1].Len())
				}
				next = p.Stop
			}
			assert.Equal(t, total, next)
		}
	}
}

func TestPartitionConfig(t *testing.T) {
	cases := []struct {
		rank, size int
		total      int64
	}{
		{0, 0, 10},
		{0, -1, 10},
		{-1, 3, 10},
		{3, 3, 10},
		{0, 4, 3},
		{0, 1, 0},
	}
	for _, c := range cases {
		_, err := Partition(c.rank, c.size, c.total)
		assert.True(t, errors.Is(err, ErrConfig), "Partition(%d, %d, %d): %v", c.rank, c.size, c.total, err)
	}
	_, err := Partitions(5, 4)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestPartitionLarge(t *testing.T) {
	const total = int64(1) << 40
	p, err := Partition(6, 7, total)
	require.NoError(t, err)
	assert.Equal(t, total, p.Stop)
	assert.Equal(t, total/7, p.Len())
}

func ExamplePartitions() {
	parts, _ := Partitions(3, 10)
	for rank, p := range parts {
		fmt.Printf("rank %d: items [%d, %d)\n", rank, p.Start, p.Stop)
	}
	// Output:
	// rank 0: items [0, 4)
	// rank 1: items [4, 7)
	// rank 2: items [7, 10)
}

func TestPartitionMaxTotal(t *testing.T) {
	const total = math.MaxInt64
	parts, err := Partitions(3, total)
	require.NoError(t, err)
	assert.Equal(t, int64(0), parts[0].Start)
	assert.Equal(t, int64(total), parts[2].Stop)
	for i := 1; i < 3; i++ {
		assert.Equal(t, parts[i-1].Stop, parts[i].Start)
		assert.Greater(t, parts[i].Len(), int64(0))
	}
}
