// Package local implements fs.FileSystem on the local operating system's
// filesystem. It registers itself for the "file" URI scheme; the authority
// component is unused and must be empty, the URI path names the store root.
package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/example/viewfs/pkg/fs"
)

func init() {
	fs.RegisterProvider("file", func(uri *url.URL) (fs.FileSystem, error) {
		if uri.Host != "" {
			return nil, fmt.Errorf("file scheme does not support an authority: %q", uri.Host)
		}
		return New("/")
	})
}

// Store implements fs.FileSystem rooted at a local directory. All paths
// handed to its methods are interpreted relative to that root and may not
// escape it.
type Store struct {
	rootPath string
}

// New creates a local store rooted at rootPath, which must name an
// existing directory.
func New(rootPath string) (*Store, error) {
	fi, err := os.Stat(rootPath)
	if err != nil {
		return nil, fs.NewError("init", rootPath, mapOSError(err))
	}
	if !fi.IsDir() {
		return nil, fs.NewError("init", rootPath, fs.ErrNotDir)
	}

	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fs.NewError("init", rootPath, err)
	}

	return &Store{rootPath: absPath}, nil
}

// resolvePath converts a store-relative path to an absolute OS path with
// a guard against escaping the root via '..' components.
func (s *Store) resolvePath(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	cleanPath := filepath.Clean(path)
	fullPath := filepath.Join(s.rootPath, cleanPath)

	if fullPath != s.rootPath && !strings.HasPrefix(fullPath, s.rootPath+string(filepath.Separator)) {
		return "", fs.ErrInvalidName
	}
	return fullPath, nil
}

// convertFileInfo converts os.FileInfo to fs.FileInfo.
func convertFileInfo(osInfo os.FileInfo) fs.FileInfo {
	fileType := fs.FileTypeRegular
	mode := osInfo.Mode()
	if mode.IsDir() {
		fileType = fs.FileTypeDirectory
	} else if mode&os.ModeSymlink != 0 {
		fileType = fs.FileTypeSymlink
	}

	fsMode := fs.FileMode(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		fsMode |= fs.ModeSetUID
	}
	if mode&os.ModeSetgid != 0 {
		fsMode |= fs.ModeSetGID
	}
	if mode&os.ModeSticky != 0 {
		fsMode |= fs.ModeSticky
	}

	info := fs.FileInfo{
		Type:    fileType,
		Mode:    fsMode,
		Size:    osInfo.Size(),
		ModTime: osInfo.ModTime(),
	}
	if stat, ok := osInfo.Sys().(*syscall.Stat_t); ok {
		info.Uid = stat.Uid
		info.Gid = stat.Gid
	}
	return info
}

// mapOSError maps os errors to fs errors
func mapOSError(err error) error {
	if os.IsNotExist(err) {
		return fs.ErrNotExist
	} else if os.IsPermission(err) {
		return fs.ErrPermission
	} else if os.IsExist(err) {
		return fs.ErrExist
	}

	if pathErr, ok := err.(*os.PathError); ok {
		switch pathErr.Err {
		case syscall.ENOTEMPTY:
			return fs.ErrNotEmpty
		case syscall.ENOTDIR:
			return fs.ErrNotDir
		case syscall.EISDIR:
			return fs.ErrIsDir
		case syscall.EINVAL:
			return fs.ErrInvalidName
		}
	}
	return fs.ErrIO
}

// GetAttr retrieves attributes for the object at the specified path.
func (s *Store) GetAttr(ctx context.Context, path string) (fs.FileInfo, error) {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return fs.FileInfo{}, fs.NewError("GetAttr", path, err)
	}

	osInfo, err := os.Lstat(fullPath)
	if err != nil {
		return fs.FileInfo{}, fs.NewError("GetAttr", path, mapOSError(err))
	}

	info := convertFileInfo(osInfo)
	if info.Type == fs.FileTypeSymlink {
		if target, err := os.Readlink(fullPath); err == nil {
			info.SymlinkTarget = target
		}
	}
	return info, nil
}

// List returns the entries of the directory at the specified path.
func (s *Store) List(ctx context.Context, path string) ([]fs.DirEntry, error) {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return nil, fs.NewError("List", path, err)
	}

	osEntries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fs.NewError("List", path, mapOSError(err))
	}

	entries := make([]fs.DirEntry, 0, len(osEntries))
	for _, e := range osEntries {
		osInfo, err := e.Info()
		if err != nil {
			// Entry vanished between readdir and stat; skip it.
			continue
		}
		entries = append(entries, fs.DirEntry{
			Name: e.Name(),
			Info: convertFileInfo(osInfo),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Read reads data from a file at the specified offset.
func (s *Store) Read(ctx context.Context, path string, offset int64, length int) ([]byte, bool, error) {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return nil, false, fs.NewError("Read", path, err)
	}

	osInfo, err := os.Stat(fullPath)
	if err != nil {
		return nil, false, fs.NewError("Read", path, mapOSError(err))
	}
	if osInfo.IsDir() {
		return nil, false, fs.NewError("Read", path, fs.ErrIsDir)
	}
	if offset >= osInfo.Size() {
		return []byte{}, true, nil
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, false, fs.NewError("Read", path, mapOSError(err))
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	eof := false
	if err == io.EOF {
		eof = true
	} else if err != nil {
		return nil, false, fs.NewError("Read", path, mapOSError(err))
	}
	return buf[:n], eof, nil
}

// Create creates a new empty file with the given permission bits.
func (s *Store) Create(ctx context.Context, path string, mode fs.FileMode, overwrite bool) error {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return fs.NewError("Create", path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(fullPath, flags, os.FileMode(mode&fs.ModeMask))
	if err != nil {
		return fs.NewError("Create", path, mapOSError(err))
	}
	return f.Close()
}

// Append appends data to an existing file.
func (s *Store) Append(ctx context.Context, path string, data []byte) (int, error) {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return 0, fs.NewError("Append", path, err)
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return 0, fs.NewError("Append", path, mapOSError(err))
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		return n, fs.NewError("Append", path, mapOSError(err))
	}
	return n, nil
}

// Mkdir creates the directory at the specified path and any missing parents.
func (s *Store) Mkdir(ctx context.Context, path string, mode fs.FileMode) error {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return fs.NewError("Mkdir", path, err)
	}

	if err := os.MkdirAll(fullPath, os.FileMode(mode&fs.ModeMask)); err != nil {
		return fs.NewError("Mkdir", path, mapOSError(err))
	}
	return nil
}

// Delete removes the object at the specified path.
func (s *Store) Delete(ctx context.Context, path string, recursive bool) error {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return fs.NewError("Delete", path, err)
	}
	if fullPath == s.rootPath {
		return fs.NewError("Delete", path, fs.ErrPermission)
	}

	if recursive {
		if _, err := os.Lstat(fullPath); err != nil {
			return fs.NewError("Delete", path, mapOSError(err))
		}
		if err := os.RemoveAll(fullPath); err != nil {
			return fs.NewError("Delete", path, mapOSError(err))
		}
		return nil
	}

	if err := os.Remove(fullPath); err != nil {
		return fs.NewError("Delete", path, mapOSError(err))
	}
	return nil
}

// Close releases the store handle. Local stores hold no resources.
func (s *Store) Close() error {
	return nil
}
