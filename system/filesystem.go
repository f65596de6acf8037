// Package system abstracts the filesystem the generator reads documents from and
// writes generated units to.
package system

import (
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"
	"time"
)

// VirtualFS is a readable filesystem. Paths are passed through unchanged, so the
// OS backed implementation accepts relative and absolute paths alike.
type VirtualFS interface {
	fs.FS
}

// WritableFS is a filesystem generated output can be written to.
type WritableFS interface {
	VirtualFS
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(name string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// FileSystem is the OS backed filesystem.
type FileSystem struct{}

var (
	_ VirtualFS  = (*FileSystem)(nil)
	_ WritableFS = (*FileSystem)(nil)
)

func (fs *FileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (fs *FileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (fs *FileSystem) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(name, perm)
}

func (fs *FileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// MemoryFS is an in-memory WritableFS. It is safe for concurrent use.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
}

var _ WritableFS = (*MemoryFS)(nil)

// NewMemoryFS creates an empty in-memory filesystem containing only the root directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: map[string][]byte{},
		dirs:  map[string]bool{".": true},
	}
}

func clean(name string) string {
	return path.Clean(name)
}

func (m *MemoryFS) Open(name string) (fs.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[clean(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return newMemFile(clean(name), data), nil
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = clean(name)
	if m.dirs[name] {
		return memInfo{name: path.Base(name), dir: true}, nil
	}
	if data, ok := m.files[name]; ok {
		return memInfo{name: path.Base(name), size: int64(len(data))}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) MkdirAll(name string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for dir := clean(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if _, ok := m.files[dir]; ok {
			return &fs.PathError{Op: "mkdir", Path: dir, Err: fs.ErrExist}
		}
		m.dirs[dir] = true
	}
	return nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = clean(name)
	if dir := path.Dir(name); !m.dirs[dir] {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrNotExist}
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

// Files returns the names of all written files in sorted order.
func (m *MemoryFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the contents of a written file.
func (m *MemoryFS) ReadFile(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[clean(name)]
	return data, ok
}

type memInfo struct {
	name string
	size int64
	dir  bool
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

func (i memInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

type memFile struct {
	info memInfo
	data []byte
	off  int
}

func newMemFile(name string, data []byte) *memFile {
	return &memFile{info: memInfo{name: path.Base(name), size: int64(len(data))}, data: data}
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Close() error               { return nil }

func (f *memFile) Read(p []byte) (int, error) {
	if f.off >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.off:])
	f.off += n
	return n, nil
}
