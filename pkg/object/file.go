// pkg/object/file.go

package object

import (
	"os"
	"path/filepath"
)

type diskFile struct {
	*os.File
}

func (f *diskFile) Size() (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

type disk struct {
	root string
}

func (d *disk) String() string {
	if d.root == "" {
		return "file://"
	}
	return "file://" + d.root + "/"
}

func (d *disk) path(p string) string {
	if d.root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.root, p)
}

func (d *disk) Open(path string) (File, error) {
	f, err := os.Open(d.path(path))
	if err != nil {
		return nil, err
	}
	adviseSequential(f)
	return &diskFile{f}, nil
}

func (d *disk) Create(path string) (File, error) {
	p := d.path(path)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil && os.IsNotExist(err) {
		if err = os.MkdirAll(filepath.Dir(p), 0755); err == nil {
			f, err = os.OpenFile(p, os.O_WRONLY|os.O_CREATE, 0644)
		}
	}
	if err != nil {
		return nil, err
	}
	return &diskFile{f}, nil
}

// NewDisk returns a storage on the local file system. Relative paths are
// resolved against root, or the working directory if root is empty.
func NewDisk(root string) Storage {
	return &disk{root: filepath.Clean(root)}
}

func newDisk(addr string) (Storage, error) {
	if addr == "" {
		return &disk{}, nil
	}
	return NewDisk(addr), nil
}

func init() {
	Register("file", newDisk)
}
