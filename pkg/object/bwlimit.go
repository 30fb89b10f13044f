// pkg/object/bwlimit.go

package object

import (
	"github.com/juju/ratelimit"
)

type limitedFile struct {
	File
	up   *ratelimit.Bucket
	down *ratelimit.Bucket
}

// ReadAt waits for the tokens of the bytes it read.
func (l *limitedFile) ReadAt(buf []byte, off int64) (int, error) {
	n, err := l.File.ReadAt(buf, off)
	if l.down != nil && n > 0 {
		l.down.Wait(int64(n))
	}
	return n, err
}

// WriteAt waits for the tokens of buf before writing it.
func (l *limitedFile) WriteAt(buf []byte, off int64) (int, error) {
	if l.up != nil && len(buf) > 0 {
		l.up.Wait(int64(len(buf)))
	}
	return l.File.WriteAt(buf, off)
}

func (l *limitedFile) Preallocate(size int64) error {
	if p, ok := l.File.(Preallocator); ok {
		return p.Preallocate(size)
	}
	return nil
}

type bwlimit struct {
	Storage
	upLimit   *ratelimit.Bucket
	downLimit *ratelimit.Bucket
}

// NewLimited limits the write (up) and read (down) bandwidth of every file
// opened through s to the given bytes per second. Zero means unlimited.
// The buckets are shared by all the files, so the limits hold per process.
func NewLimited(s Storage, up, down int64) Storage {
	bw := &bwlimit{s, nil, nil}
	if up > 0 {
		bw.upLimit = ratelimit.NewBucketWithRate(float64(up), up)
	}
	if down > 0 {
		bw.downLimit = ratelimit.NewBucketWithRate(float64(down), down)
	}
	return bw
}

func (p *bwlimit) Open(path string) (File, error) {
	f, err := p.Storage.Open(path)
	if err != nil {
		return nil, err
	}
	return &limitedFile{f, p.upLimit, p.downLimit}, nil
}

func (p *bwlimit) Create(path string) (File, error) {
	f, err := p.Storage.Create(path)
	if err != nil {
		return nil, err
	}
	return &limitedFile{f, p.upLimit, p.downLimit}, nil
}
