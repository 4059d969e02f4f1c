package fuse

import (
	"context"
	"errors"
	"os"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/example/viewfs/pkg/fs"
	"github.com/example/viewfs/pkg/viewfs"
)

// Dir represents a directory in the composed namespace.
type Dir struct {
	fs   *FS
	path string
}

// Attr sets the attributes of the directory
func (d *Dir) Attr(ctx context.Context, attr *fuse.Attr) error {
	info, err := d.fs.stat(ctx, d.path)
	if err != nil {
		return mapError(err)
	}
	fillAttr(info, attr)
	return nil
}

// Lookup finds a child of the directory by name.
func (d *Dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	childPath := join(d.path, name)
	info, err := d.fs.stat(ctx, childPath)
	if err != nil {
		return nil, mapError(err)
	}
	return d.fs.nodeFor(childPath, info), nil
}

// ReadDirAll returns the merged listing of the directory.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.fs.ns.List(ctx, d.path)
	if err != nil {
		return nil, mapError(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		d.fs.attrs.store(join(d.path, e.Name), e.Info)
		dirents = append(dirents, fuse.Dirent{
			Name: e.Name,
			Type: direntType(e.Info.Type),
		})
	}
	return dirents, nil
}

// Mkdir creates a directory through the namespace.
func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	childPath := join(d.path, req.Name)
	if err := d.fs.ns.Mkdir(ctx, childPath, fs.FileMode(req.Mode.Perm())); err != nil {
		return nil, mapError(err)
	}
	d.fs.attrs.invalidate(childPath)
	return &Dir{fs: d.fs, path: childPath}, nil
}

// Create creates an empty file through the namespace.
func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	childPath := join(d.path, req.Name)
	excl := req.Flags&fuse.OpenExclusive != 0
	if err := d.fs.ns.Create(ctx, childPath, fs.FileMode(req.Mode.Perm()), !excl); err != nil {
		return nil, nil, mapError(err)
	}
	d.fs.attrs.invalidate(childPath)
	f := &File{fs: d.fs, path: childPath}
	return f, f, nil
}

// Remove removes a file or directory through the namespace.
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	childPath := join(d.path, req.Name)
	if err := d.fs.ns.Delete(ctx, childPath, false); err != nil {
		return mapError(err)
	}
	d.fs.attrs.invalidate(childPath)
	return nil
}

// Symlink is a mount point surfaced as a symbolic reference. Its target
// is the link's backing-store URI.
type Symlink struct {
	fs     *FS
	path   string
	target string
}

// Attr sets the attributes of the symlink
func (s *Symlink) Attr(ctx context.Context, attr *fuse.Attr) error {
	info, err := s.fs.stat(ctx, s.path)
	if err != nil {
		return mapError(err)
	}
	fillAttr(info, attr)
	return nil
}

// Readlink returns the backing-store URI the mount point routes to.
func (s *Symlink) Readlink(ctx context.Context, req *fuse.ReadlinkRequest) (string, error) {
	return s.target, nil
}

// stat resolves attributes through the cache.
func (f *FS) stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if info, ok := f.attrs.get(path); ok {
		return info, nil
	}
	info, err := f.ns.GetAttr(ctx, path)
	if err != nil {
		return fs.FileInfo{}, err
	}
	f.attrs.store(path, info)
	return info, nil
}

// nodeFor picks the node type matching an entry's reported type.
func (f *FS) nodeFor(path string, info fs.FileInfo) fusefs.Node {
	switch info.Type {
	case fs.FileTypeDirectory:
		return &Dir{fs: f, path: path}
	case fs.FileTypeSymlink:
		return &Symlink{fs: f, path: path, target: info.SymlinkTarget}
	default:
		return &File{fs: f, path: path}
	}
}

func join(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func fillAttr(info fs.FileInfo, attr *fuse.Attr) {
	mode := os.FileMode(info.Mode & fs.ModeMask)
	switch info.Type {
	case fs.FileTypeDirectory:
		mode |= os.ModeDir
	case fs.FileTypeSymlink:
		mode |= os.ModeSymlink
	}
	attr.Mode = mode
	attr.Size = uint64(info.Size)
	attr.Mtime = info.ModTime
	attr.Uid = info.Uid
	attr.Gid = info.Gid
}

func direntType(t fs.FileType) fuse.DirentType {
	switch t {
	case fs.FileTypeDirectory:
		return fuse.DT_Dir
	case fs.FileTypeSymlink:
		return fuse.DT_Link
	default:
		return fuse.DT_File
	}
}

// mapError converts namespace errors to FUSE errnos.
func mapError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, fs.ErrExist):
		return syscall.EEXIST
	case errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrReadOnly):
		return syscall.EPERM
	case errors.Is(err, fs.ErrIsDir):
		return syscall.EISDIR
	case errors.Is(err, fs.ErrNotDir):
		return syscall.ENOTDIR
	case errors.Is(err, fs.ErrNotEmpty):
		return syscall.ENOTEMPTY
	case errors.Is(err, viewfs.ErrInvalidPath), errors.Is(err, fs.ErrInvalidName):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}
