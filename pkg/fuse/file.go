package fuse

import (
	"context"
	"syscall"

	"bazil.org/fuse"
)

// readChunkSize bounds how much is pulled from a backing store per read.
const readChunkSize = 1 << 20

// File represents a file in the composed namespace.
type File struct {
	fs   *FS
	path string
}

// Attr sets the attributes of the file
func (f *File) Attr(ctx context.Context, attr *fuse.Attr) error {
	info, err := f.fs.stat(ctx, f.path)
	if err != nil {
		return mapError(err)
	}
	fillAttr(info, attr)
	return nil
}

// ReadAll reads the full content of the file from its backing store.
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	var out []byte
	offset := int64(0)
	for {
		data, eof, err := f.fs.ns.Read(ctx, f.path, offset, readChunkSize)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, data...)
		offset += int64(len(data))
		if eof || len(data) == 0 {
			return out, nil
		}
	}
}

// Write appends data to the file. Backing stores are append-only through
// the namespace, so only writes landing exactly at the current end of
// file are accepted.
func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	info, err := f.fs.ns.GetAttr(ctx, f.path)
	if err != nil {
		return mapError(err)
	}
	if req.Offset != info.Size {
		return syscall.ENOTSUP
	}

	n, err := f.fs.ns.Append(ctx, f.path, req.Data)
	if err != nil {
		return mapError(err)
	}
	f.fs.attrs.invalidate(f.path)
	resp.Size = n
	return nil
}

// Fsync is a no-op since Append is synchronous on every store.
func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	return nil
}
