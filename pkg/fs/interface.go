package fs

import (
	"context"
)

// FileSystem is the capability interface a backing store must provide.
// The composed namespace consumes storage exclusively through it; any
// system that can answer these six calls can serve as a mount target.
type FileSystem interface {
	// GetAttr retrieves attributes for the object at the specified path.
	GetAttr(ctx context.Context, path string) (FileInfo, error)

	// List returns the entries of the directory at the specified path,
	// each with its metadata. Fails with ErrNotDir on non-directories.
	List(ctx context.Context, path string) ([]DirEntry, error)

	// Read reads up to length bytes from a file at the specified offset.
	// Returns the data read and whether the end of file was reached.
	Read(ctx context.Context, path string, offset int64, length int) ([]byte, bool, error)

	// Create creates a new empty file with the given permission bits.
	// If overwrite is false the operation fails with ErrExist when an
	// object is already present at the path.
	Create(ctx context.Context, path string, mode FileMode, overwrite bool) error

	// Append appends data to an existing file and returns the number of
	// bytes written.
	Append(ctx context.Context, path string, data []byte) (int, error)

	// Mkdir creates the directory at the specified path, together with
	// any missing parents, all with the given permission bits.
	Mkdir(ctx context.Context, path string, mode FileMode) error

	// Delete removes the object at the specified path. Non-empty
	// directories are only removed when recursive is true.
	Delete(ctx context.Context, path string, recursive bool) error

	// Close releases any resources held by the store handle. The handle
	// must not be used afterwards.
	Close() error
}
