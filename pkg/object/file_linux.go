// pkg/object/file_linux.go

package object

import (
	"os"

	"golang.org/x/sys/unix"
)

func adviseSequential(f *os.File) {
	if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL); err != nil {
		logger.Debugf("fadvise %s: %s", f.Name(), err)
	}
}

// Preallocate reserves size bytes without changing data already written.
func (f *diskFile) Preallocate(size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if err == unix.EOPNOTSUPP || err == unix.ENOSYS {
		return f.extend(size)
	}
	return err
}

func (f *diskFile) extend(size int64) error {
	cur, err := f.Size()
	if err != nil || cur >= size {
		return err
	}
	return f.Truncate(size)
}
