// pkg/utils/buffer.go

package utils

import (
	"encoding/binary"
	"math"
)

// Buffer is a fixed-size byte buffer for packing and unpacking items.
// Values are little-endian, the layout the producing workers keep in memory.
type Buffer struct {
	endian binary.ByteOrder
	off    int
	buf    []byte
}

// NewBuffer returns a zeroed buffer of sz bytes.
func NewBuffer(sz uint32) *Buffer {
	return FromBuffer(make([]byte, sz))
}

// FromBuffer wraps buf without copying it.
func FromBuffer(buf []byte) *Buffer {
	return &Buffer{binary.LittleEndian, 0, buf}
}

func (b *Buffer) Put8(v uint8) {
	b.buf[b.off] = v
	b.off++
}

func (b *Buffer) Get8() uint8 {
	v := b.buf[b.off]
	b.off++
	return v
}

func (b *Buffer) Put32(v uint32) {
	b.endian.PutUint32(b.buf[b.off:b.off+4], v)
	b.off += 4
}

func (b *Buffer) Get32() uint32 {
	v := b.endian.Uint32(b.buf[b.off : b.off+4])
	b.off += 4
	return v
}

func (b *Buffer) Put64(v uint64) {
	b.endian.PutUint64(b.buf[b.off:b.off+8], v)
	b.off += 8
}

func (b *Buffer) Get64() uint64 {
	v := b.endian.Uint64(b.buf[b.off : b.off+8])
	b.off += 8
	return v
}

func (b *Buffer) PutFloat32(v float32) {
	b.Put32(math.Float32bits(v))
}

func (b *Buffer) GetFloat32() float32 {
	return math.Float32frombits(b.Get32())
}

func (b *Buffer) PutFloat64(v float64) {
	b.Put64(math.Float64bits(v))
}

func (b *Buffer) GetFloat64() float64 {
	return math.Float64frombits(b.Get64())
}

func (b *Buffer) Bytes() []byte {
	return b.buf
}
