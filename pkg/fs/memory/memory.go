// Package memory implements fs.FileSystem on an in-memory afero filesystem.
// It registers itself for the "mem" URI scheme. Stores are named by the URI
// authority and shared process-wide: every handle opened for mem://name sees
// the same tree. The package is the standard backing double in tests and
// doubles as a scratch store for throwaway namespaces.
package memory

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/afero"

	"github.com/example/viewfs/pkg/fs"
)

func init() {
	fs.RegisterProvider("mem", func(uri *url.URL) (fs.FileSystem, error) {
		return Get(uri.Host), nil
	})
}

var (
	storesMu sync.Mutex
	stores   = make(map[string]*Store)
)

// Get returns the shared in-memory store with the given name, creating it
// on first use.
func Get(name string) *Store {
	storesMu.Lock()
	defer storesMu.Unlock()
	s, ok := stores[name]
	if !ok {
		s = &Store{name: name, fs: afero.NewMemMapFs()}
		stores[name] = s
	}
	return s
}

// Reset discards the named store's contents. Test helper.
func Reset(name string) {
	storesMu.Lock()
	defer storesMu.Unlock()
	delete(stores, name)
}

// Store implements fs.FileSystem over an afero MemMapFs.
type Store struct {
	name string
	fs   afero.Fs
}

// Afero exposes the underlying afero filesystem so tests can seed state
// directly.
func (s *Store) Afero() afero.Fs {
	return s.fs
}

func clean(p string) string {
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

func mapAferoError(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENOENT):
		return fs.ErrNotExist
	case errors.Is(err, os.ErrExist), errors.Is(err, syscall.EEXIST):
		return fs.ErrExist
	case errors.Is(err, os.ErrPermission):
		return fs.ErrPermission
	case errors.Is(err, syscall.ENOTDIR):
		return fs.ErrNotDir
	case errors.Is(err, syscall.ENOTEMPTY):
		return fs.ErrNotEmpty
	}
	return fs.ErrIO
}

func convertFileInfo(osInfo os.FileInfo) fs.FileInfo {
	fileType := fs.FileTypeRegular
	if osInfo.IsDir() {
		fileType = fs.FileTypeDirectory
	}
	return fs.FileInfo{
		Type:    fileType,
		Mode:    fs.FileMode(osInfo.Mode().Perm()),
		Size:    osInfo.Size(),
		ModTime: osInfo.ModTime(),
	}
}

// GetAttr retrieves attributes for the object at the specified path.
func (s *Store) GetAttr(ctx context.Context, p string) (fs.FileInfo, error) {
	osInfo, err := s.fs.Stat(clean(p))
	if err != nil {
		return fs.FileInfo{}, fs.NewError("GetAttr", p, mapAferoError(err))
	}
	return convertFileInfo(osInfo), nil
}

// List returns the entries of the directory at the specified path.
func (s *Store) List(ctx context.Context, p string) ([]fs.DirEntry, error) {
	cp := clean(p)
	osInfo, err := s.fs.Stat(cp)
	if err != nil {
		return nil, fs.NewError("List", p, mapAferoError(err))
	}
	if !osInfo.IsDir() {
		return nil, fs.NewError("List", p, fs.ErrNotDir)
	}

	osEntries, err := afero.ReadDir(s.fs, cp)
	if err != nil {
		return nil, fs.NewError("List", p, mapAferoError(err))
	}

	entries := make([]fs.DirEntry, 0, len(osEntries))
	for _, e := range osEntries {
		entries = append(entries, fs.DirEntry{
			Name: e.Name(),
			Info: convertFileInfo(e),
		})
	}
	return entries, nil
}

// Read reads data from a file at the specified offset.
func (s *Store) Read(ctx context.Context, p string, offset int64, length int) ([]byte, bool, error) {
	cp := clean(p)
	osInfo, err := s.fs.Stat(cp)
	if err != nil {
		return nil, false, fs.NewError("Read", p, mapAferoError(err))
	}
	if osInfo.IsDir() {
		return nil, false, fs.NewError("Read", p, fs.ErrIsDir)
	}
	if offset >= osInfo.Size() {
		return []byte{}, true, nil
	}

	f, err := s.fs.Open(cp)
	if err != nil {
		return nil, false, fs.NewError("Read", p, mapAferoError(err))
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	eof := false
	if err == io.EOF {
		eof = true
	} else if err != nil {
		return nil, false, fs.NewError("Read", p, mapAferoError(err))
	}
	return buf[:n], eof, nil
}

// Create creates a new empty file with the given permission bits.
func (s *Store) Create(ctx context.Context, p string, mode fs.FileMode, overwrite bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	f, err := s.fs.OpenFile(clean(p), flags, os.FileMode(mode&fs.ModeMask))
	if err != nil {
		return fs.NewError("Create", p, mapAferoError(err))
	}
	return f.Close()
}

// Append appends data to an existing file.
func (s *Store) Append(ctx context.Context, p string, data []byte) (int, error) {
	cp := clean(p)
	if _, err := s.fs.Stat(cp); err != nil {
		return 0, fs.NewError("Append", p, mapAferoError(err))
	}

	f, err := s.fs.OpenFile(cp, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return 0, fs.NewError("Append", p, mapAferoError(err))
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		return n, fs.NewError("Append", p, mapAferoError(err))
	}
	return n, nil
}

// Mkdir creates the directory at the specified path and any missing parents.
func (s *Store) Mkdir(ctx context.Context, p string, mode fs.FileMode) error {
	if err := s.fs.MkdirAll(clean(p), os.FileMode(mode&fs.ModeMask)); err != nil {
		return fs.NewError("Mkdir", p, mapAferoError(err))
	}
	return nil
}

// Delete removes the object at the specified path.
func (s *Store) Delete(ctx context.Context, p string, recursive bool) error {
	cp := clean(p)
	if cp == "/" {
		return fs.NewError("Delete", p, fs.ErrPermission)
	}

	osInfo, err := s.fs.Stat(cp)
	if err != nil {
		return fs.NewError("Delete", p, mapAferoError(err))
	}

	if osInfo.IsDir() && !recursive {
		children, err := afero.ReadDir(s.fs, cp)
		if err != nil {
			return fs.NewError("Delete", p, mapAferoError(err))
		}
		if len(children) > 0 {
			return fs.NewError("Delete", p, fs.ErrNotEmpty)
		}
	}

	if err := s.fs.RemoveAll(cp); err != nil {
		return fs.NewError("Delete", p, mapAferoError(err))
	}
	return nil
}

// Close releases the store handle. The shared tree stays alive so other
// handles to the same named store remain valid.
func (s *Store) Close() error {
	return nil
}
