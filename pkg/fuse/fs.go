// Package fuse exposes a composed namespace as a FUSE mount. Directory
// listings come out of the namespace's merge logic, so mount structure,
// link targets and fallback content all appear in one tree. Files are
// readable and appendable; directories can be created and removed where
// the namespace allows it.
package fuse

import (
	"time"

	fusefs "bazil.org/fuse/fs"

	"github.com/example/viewfs/pkg/viewfs"
)

// FS implements the FUSE filesystem interface over a Namespace.
type FS struct {
	ns    *viewfs.Namespace
	attrs *attrCache
}

// NewFS creates a FUSE filesystem serving the given namespace. Attribute
// responses are cached for cacheTTL to keep kernel-driven stat storms off
// the backing stores; zero disables caching.
func NewFS(ns *viewfs.Namespace, cacheTTL time.Duration) *FS {
	return &FS{
		ns:    ns,
		attrs: newAttrCache(1024, cacheTTL),
	}
}

// Root returns the root directory of the filesystem
func (f *FS) Root() (fusefs.Node, error) {
	return &Dir{fs: f, path: "/"}, nil
}
