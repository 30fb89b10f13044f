// pkg/chunk/codec.go

package chunk

import (
	"context"

	"ParIO/pkg/utils"
)

// Codec packs values of T into items of Size bytes.
type Codec[T any] interface {
	Size() int
	Put(b *utils.Buffer, v T)
	Get(b *utils.Buffer) T
}

type float64Codec struct{}

func (float64Codec) Size() int { return 8 }
func (float64Codec) Put(b *utils.Buffer, v float64) { b.PutFloat64(v) }
func (float64Codec) Get(b *utils.Buffer) float64 { return b.GetFloat64() }

type float32Codec struct{}

func (float32Codec) Size() int { return 4 }
func (float32Codec) Put(b *utils.Buffer, v float32) { b.PutFloat32(v) }
func (float32Codec) Get(b *utils.Buffer) float32 { return b.GetFloat32() }

type int64Codec struct{}

func (int64Codec) Size() int { return 8 }
func (int64Codec) Put(b *utils.Buffer, v int64) { b.Put64(uint64(v)) }
func (int64Codec) Get(b *utils.Buffer) int64 { return int64(b.Get64()) }

type int32Codec struct{}

func (int32Codec) Size() int { return 4 }
func (int32Codec) Put(b *utils.Buffer, v int32) { b.Put32(uint32(v)) }
func (int32Codec) Get(b *utils.Buffer) int32 { return int32(b.Get32()) }

type uint8Codec struct{}

func (uint8Codec) Size() int { return 1 }
func (uint8Codec) Put(b *utils.Buffer, v uint8) { b.Put8(v) }
func (uint8Codec) Get(b *utils.Buffer) uint8 { return b.Get8() }

// Little-endian codecs of the common item types.
var (
	Float64 Codec[float64] = float64Codec{}
	Float32 Codec[float32] = float32Codec{}
	Int64   Codec[int64]   = int64Codec{}
	Int32   Codec[int32]   = int32Codec{}
	Uint8   Codec[uint8]   = uint8Codec{}
)

// Encode packs items into a new byte slice.
func Encode[T any](codec Codec[T], items []T) []byte {
	b := utils.NewBuffer(uint32(len(items) * codec.Size()))
	for _, v := range items {
		codec.Put(b, v)
	}
	return b.Bytes()
}

// Decode unpacks every whole item of data.
func Decode[T any](codec Codec[T], data []byte) []T {
	b := utils.FromBuffer(data)
	items := make([]T, len(data)/codec.Size())
	for i := range items {
		items[i] = codec.Get(b)
	}
	return items
}

func checkCodec(c *Channel, size int) error {
	if size != c.itemSize {
		return errorf(ErrConfig, "codec of %d bytes for items of %d bytes", size, c.itemSize)
	}
	return nil
}

// ReadItems reads the chunk of this worker and decodes it.
func ReadItems[T any](ctx context.Context, c *Channel, codec Codec[T]) ([]T, error) {
	if err := checkCodec(c, codec.Size()); err != nil {
		return nil, err
	}
	data, err := c.ReadChunk(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(codec, data), nil
}

// WriteItems encodes items and writes them with WriteChunk.
func WriteItems[T any](ctx context.Context, c *Channel, codec Codec[T], items []T) error {
	if err := checkCodec(c, codec.Size()); err != nil {
		return err
	}
	return c.WriteChunk(ctx, Encode(codec, items))
}
