// pkg/chunk/channel_test.go

package chunk

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"ParIO/pkg/comm"
	"ParIO/pkg/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int64) []float64 {
	items := make([]float64, n)
	for i := range items {
		items[i] = float64(i) + 0.5
	}
	return items
}

// writeAll writes items with a group of size workers, each one passing its
// own partition.
func writeAll(t *testing.T, store object.Storage, name string, size int, items []float64) {
	err := comm.Run(context.Background(), size, func(ctx context.Context, c comm.Communicator) error {
		ch, err := OpenForWrite(store, name, 8, c)
		if err != nil {
			return err
		}
		defer ch.Close()
		part, err := Partition(c.Rank(), c.Size(), int64(len(items)))
		if err != nil {
			return err
		}
		return WriteItems(ctx, ch, Float64, items[part.Start:part.Stop])
	})
	require.NoError(t, err)
}

// readAll reads name with size independent readers and joins their chunks.
func readAll(t *testing.T, store object.Storage, name string, size int) []float64 {
	var all []float64
	for rank := 0; rank < size; rank++ {
		ch, err := OpenForRead(store, name, 8, comm.Fixed(rank, size))
		require.NoError(t, err)
		items, err := ReadItems(context.Background(), ch, Float64)
		require.NoError(t, err)
		assert.Equal(t, ch.ChunkSize(), int64(len(items)))
		assert.Equal(t, int64(len(all)), ch.FirstItem())
		assert.Equal(t, ch.FirstItem()*8, ch.ByteOffset())
		all = append(all, items...)
		require.NoError(t, ch.Close())
	}
	return all
}

func TestRoundTrip(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	items := sequence(1000)
	for _, writers := range []int{1, 2, 3, 7} {
		writeAll(t, store, "data.bin", writers, items)
		for _, readers := range []int{1, 4, 6} {
			assert.Equal(t, items, readAll(t, store, "data.bin", readers), "%d writers, %d readers", writers, readers)
		}
	}
}

func TestRewriteShrinks(t *testing.T) {
	dir := t.TempDir()
	store := object.NewDisk(dir)
	writeAll(t, store, "data.bin", 3, sequence(100))
	writeAll(t, store, "data.bin", 2, sequence(10))

	st, err := os.Stat(filepath.Join(dir, "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(80), st.Size())
	assert.Equal(t, sequence(10), readAll(t, store, "data.bin", 1))
}

func TestReadIdempotent(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	writeAll(t, store, "data.bin", 1, sequence(10))

	ch, err := OpenForRead(store, "data.bin", 8, comm.Fixed(1, 3))
	require.NoError(t, err)
	defer ch.Close()
	first, err := ch.ReadChunk(context.Background())
	require.NoError(t, err)
	second, err := ch.ReadChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, Range{4, 7}, ch.Partition())
	assert.Equal(t, int64(10), ch.NumItems())
	assert.Equal(t, int64(80), ch.FileSize())
	assert.Equal(t, "data.bin", ch.Name())
	assert.Equal(t, 1, ch.Rank())
	assert.Equal(t, 3, ch.Size())
	assert.Equal(t, 8, ch.ItemSize())
}

func TestReadFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ragged.bin"), make([]byte, 81), 0644))
	ch, err := OpenForRead(object.NewDisk(dir), "ragged.bin", 8, comm.Fixed(0, 1))
	require.NoError(t, err)
	defer ch.Close()
	_, err = ch.ReadChunk(context.Background())
	assert.ErrorIs(t, err, ErrFormat)
	assert.Equal(t, int64(0), ch.NumItems())
}

func TestReadTooManyWorkers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "small.bin"), make([]byte, 16), 0644))
	ch, err := OpenForRead(object.NewDisk(dir), "small.bin", 8, comm.Fixed(0, 3))
	require.NoError(t, err)
	defer ch.Close()
	_, err = ch.ReadChunk(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestOpenFailure(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	_, err := OpenForRead(store, "missing.bin", 8, comm.Fixed(0, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	var ioe *IOError
	require.True(t, errors.As(err, &ioe))
	assert.Equal(t, "open", ioe.Op)

	_, err = OpenForRead(store, "missing.bin", 0, comm.Fixed(0, 1))
	assert.ErrorIs(t, err, ErrConfig)
	_, err = OpenForRead(store, "missing.bin", 8, comm.Fixed(2, 2))
	assert.ErrorIs(t, err, ErrConfig)
	_, err = OpenForWrite(store, "out.bin", 8, nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestClosed(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	writeAll(t, store, "data.bin", 1, sequence(4))
	ch, err := OpenForRead(store, "data.bin", 8, comm.Fixed(0, 1))
	require.NoError(t, err)
	require.NoError(t, ch.Close())
	assert.ErrorIs(t, ch.Close(), ErrClosed)
	_, err = ch.ReadChunk(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	g := comm.NewGroup(1)
	w, err := OpenForWrite(store, "data.bin", 8, g.Member(0))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteChunk(context.Background(), make([]byte, 8)), ErrClosed)
}

func TestWriteFormat(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	g := comm.NewGroup(1)
	ch, err := OpenForWrite(store, "data.bin", 8, g.Member(0))
	require.NoError(t, err)
	defer ch.Close()
	assert.ErrorIs(t, ch.WriteChunk(context.Background(), make([]byte, 12)), ErrFormat)
	assert.NoError(t, g.Err())
}

func TestWriteTooManyWorkers(t *testing.T) {
	dir := t.TempDir()
	store := object.NewDisk(dir)
	err := comm.Run(context.Background(), 3, func(ctx context.Context, c comm.Communicator) error {
		ch, err := OpenForWrite(store, "data.bin", 8, c)
		if err != nil {
			return err
		}
		defer ch.Close()
		var buf []byte
		if c.Rank() == 0 {
			buf = Encode(Float64, []float64{1, 2})
		}
		return ch.WriteChunk(ctx, buf)
	})
	assert.ErrorIs(t, err, ErrConfig)
	st, err := os.Stat(filepath.Join(dir, "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Size())
}

func TestWriteAborted(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	broken := errors.New("no data")
	err := comm.Run(context.Background(), 4, func(ctx context.Context, c comm.Communicator) error {
		if c.Rank() == 2 {
			return broken
		}
		ch, err := OpenForWrite(store, "data.bin", 8, c)
		if err != nil {
			return err
		}
		defer ch.Close()
		return ch.WriteChunk(ctx, make([]byte, 8))
	})
	assert.ErrorIs(t, err, broken)
	assert.ErrorIs(t, err, comm.ErrAborted)
}

func TestCodecMismatch(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	writeAll(t, store, "data.bin", 1, sequence(4))
	ch, err := OpenForRead(store, "data.bin", 8, comm.Fixed(0, 1))
	require.NoError(t, err)
	defer ch.Close()
	_, err = ReadItems(context.Background(), ch, Int32)
	assert.ErrorIs(t, err, ErrConfig)
	ints, err := ReadItems(context.Background(), ch, Int64)
	require.NoError(t, err)
	assert.Len(t, ints, 4)
}

func TestCodecs(t *testing.T) {
	assert.Equal(t, []int32{-1, 0, 7}, Decode(Int32, Encode(Int32, []int32{-1, 0, 7})))
	assert.Equal(t, []float32{1.5, -2}, Decode(Float32, Encode(Float32, []float32{1.5, -2})))
	assert.Equal(t, []byte{1, 0, 0, 0}, Encode(Int32, []int32{1}))
	assert.Equal(t, []uint8{9, 8}, Decode(Uint8, []byte{9, 8}))
	assert.Equal(t, []int64{-3}, Decode(Int64, Encode(Int64, []int64{-3})))
}

type shortFile struct {
	object.File
}

func (f shortFile) ReadAt(p []byte, off int64) (int, error) {
	n, _ := f.File.ReadAt(p[:len(p)/2], off)
	return n, io.EOF
}

type shortStorage struct {
	object.Storage
}

func (s shortStorage) Open(path string) (object.File, error) {
	f, err := s.Storage.Open(path)
	if err != nil {
		return nil, err
	}
	return shortFile{f}, nil
}

func TestShortRead(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	writeAll(t, store, "data.bin", 1, sequence(8))
	ch, err := OpenForRead(shortStorage{store}, "data.bin", 8, comm.Fixed(0, 2))
	require.NoError(t, err)
	defer ch.Close()
	_, err = ch.ReadChunk(context.Background())
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteUnevenBuffers(t *testing.T) {
	dir := t.TempDir()
	store := object.NewDisk(dir)
	items := sequence(10)
	held := [][]float64{items[:3], items[3:]}
	chunks := make([]int64, 2)
	parts := make([]Range, 2)
	err := comm.Run(context.Background(), 2, func(ctx context.Context, c comm.Communicator) error {
		ch, err := OpenForWrite(store, "data.bin", 8, c)
		if err != nil {
			return err
		}
		defer ch.Close()
		if err = WriteItems(ctx, ch, Float64, held[c.Rank()]); err != nil {
			return err
		}
		chunks[c.Rank()] = ch.ChunkSize()
		parts[c.Rank()] = ch.Partition()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, chunks)
	assert.Equal(t, []Range{{0, 5}, {5, 10}}, parts)

	// each buffer lands at the offset of its partition
	want := Encode(Float64, items[:3])
	want = append(want, make([]byte, 16)...)
	want = append(want, Encode(Float64, items[3:])...)
	got, err := os.ReadFile(filepath.Join(dir, "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

type badFile struct {
	object.File
	short bool
}

var errDiskFull = errors.New("disk full")

func (f badFile) WriteAt(p []byte, off int64) (int, error) {
	if f.short {
		return f.File.WriteAt(p[:len(p)/2], off)
	}
	return 0, errDiskFull
}

type badStorage struct {
	object.Storage
	short bool
}

func (s badStorage) Create(path string) (object.File, error) {
	f, err := s.Storage.Create(path)
	if err != nil {
		return nil, err
	}
	return badFile{f, s.short}, nil
}

func TestWriteFailure(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	for _, short := range []bool{false, true} {
		g := comm.NewGroup(1)
		ch, err := OpenForWrite(badStorage{store, short}, "data.bin", 8, g.Member(0))
		require.NoError(t, err)
		err = WriteItems(context.Background(), ch, Float64, sequence(4))
		assert.ErrorIs(t, err, ErrIO)
		var ioe *IOError
		require.True(t, errors.As(err, &ioe))
		assert.Equal(t, "write", ioe.Op)
		assert.Equal(t, "data.bin", ioe.Path)
		if short {
			assert.ErrorIs(t, err, errShortWrite)
		} else {
			assert.ErrorIs(t, err, errDiskFull)
		}
		require.NoError(t, ch.Close())
	}
}

func TestLocateOverflow(t *testing.T) {
	store := object.NewDisk(t.TempDir())
	ch, err := OpenForWrite(store, "data.bin", 8, comm.NewGroup(1).Member(0))
	require.NoError(t, err)
	defer ch.Close()
	_, err = ch.locate(math.MaxInt64/8+1, -1)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, int64(0), ch.NumItems())

	part, err := ch.locate(math.MaxInt64/8, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64/8), part.Len())
	assert.Equal(t, part.Len(), ch.ChunkSize())
}
