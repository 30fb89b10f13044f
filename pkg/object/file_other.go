// pkg/object/file_other.go

//go:build !linux

package object

import "os"

func adviseSequential(f *os.File) {}

// Preallocate grows the file to size bytes if it is shorter.
func (f *diskFile) Preallocate(size int64) error {
	cur, err := f.Size()
	if err != nil || cur >= size {
		return err
	}
	return f.Truncate(size)
}
