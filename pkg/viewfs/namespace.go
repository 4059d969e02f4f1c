// Package viewfs implements a composed virtual namespace: a configured
// set of path-prefix links routed onto backing stores, with an optional
// root-anchored fallback store for everything not covered by a link.
// Callers see one uniform tree; directory listings merge mount structure
// with fallback content under a shading rule.
package viewfs

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/example/viewfs/pkg/fs"
)

// Namespace is the delegating facade over a mount table. It implements
// fs.FileSystem, so a composed namespace can be consumed anywhere a plain
// backing store can — including as the target of another namespace.
//
// Backing-store handles are opened lazily, cached per store identity
// (scheme plus authority) and shared by every path routed to that store.
// Closing the namespace closes all cached handles.
type Namespace struct {
	tbl    atomic.Pointer[MountTable]
	logger *slog.Logger
	uid    uint32
	gid    uint32

	mu      sync.Mutex
	stores  map[string]fs.FileSystem
	closed  bool
	watcher *configWatcher
}

// Option configures a Namespace.
type Option func(*Namespace)

// WithLogger sets the logger used for the tolerated, non-fatal conditions
// the namespace is allowed to absorb (fallback listing failures, reload
// errors). Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(ns *Namespace) { ns.logger = l }
}

// New builds the mount table from cfg and returns a ready namespace.
// Configuration problems fail construction outright with
// ErrInvalidMountEntry.
func New(cfg Config, opts ...Option) (*Namespace, error) {
	t, err := NewMountTable(cfg)
	if err != nil {
		return nil, err
	}

	ns := &Namespace{
		logger: slog.Default(),
		uid:    uint32(os.Getuid()),
		gid:    uint32(os.Getgid()),
		stores: make(map[string]fs.FileSystem),
	}
	for _, opt := range opts {
		opt(ns)
	}
	ns.tbl.Store(t)
	return ns, nil
}

// Table returns the current mount table snapshot. The table is immutable;
// operations that need multiple lookups grab it once so a concurrent
// reload cannot split a single call across two configurations.
func (ns *Namespace) Table() *MountTable {
	return ns.tbl.Load()
}

// Resolve routes a virtual path through the current mount table.
func (ns *Namespace) Resolve(vpath string) (Resolution, error) {
	return ns.Table().resolve(vpath)
}

// Reload replaces the mount table with one built from cfg. The swap is
// atomic: in-flight operations finish against the table they started
// with, later operations see the new one. On error the old table stays.
func (ns *Namespace) Reload(cfg Config) error {
	t, err := NewMountTable(cfg)
	if err != nil {
		return err
	}
	ns.tbl.Store(t)
	return nil
}

// storeFor returns the cached handle for the store identified by a target
// URI, opening it on first use, along with the path inside that store.
func (ns *Namespace) storeFor(target string) (fs.FileSystem, string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, "", fs.NewError("store", target, err)
	}
	p := u.Path
	if p == "" {
		p = "/"
	}

	key := u.Scheme + "://" + u.Host

	ns.mu.Lock()
	defer ns.mu.Unlock()
	if ns.closed {
		return nil, "", fs.NewError("store", target, fs.ErrNotSupported)
	}
	store, ok := ns.stores[key]
	if !ok {
		store, err = fs.Open(&url.URL{Scheme: u.Scheme, Host: u.Host})
		if err != nil {
			return nil, "", err
		}
		ns.stores[key] = store
	}
	return store, p, nil
}

// GetAttr retrieves the composed metadata for a virtual path.
func (ns *Namespace) GetAttr(ctx context.Context, path string) (fs.FileInfo, error) {
	t := ns.Table()
	res, err := t.resolve(path)
	if err != nil {
		return fs.FileInfo{}, err
	}
	return ns.status(ctx, t, res)
}

// List returns the merged child set of a virtual directory.
func (ns *Namespace) List(ctx context.Context, path string) ([]fs.DirEntry, error) {
	t := ns.Table()
	res, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	return ns.list(ctx, t, res)
}

// Read reads from the backing object a virtual path routes to.
func (ns *Namespace) Read(ctx context.Context, path string, offset int64, length int) ([]byte, bool, error) {
	res, err := ns.Resolve(path)
	if err != nil {
		return nil, false, err
	}
	if res.Kind == ResolvedInternal {
		return nil, false, fs.NewError("Read", res.Path, fs.ErrIsDir)
	}
	store, p, err := ns.storeFor(res.Target)
	if err != nil {
		return nil, false, err
	}
	return store.Read(ctx, p, offset, length)
}

// Create creates a file at the store a virtual path routes to. Paths that
// land on mount structure are rejected: internal directories exist only
// in configuration and cannot hold direct children of their own.
func (ns *Namespace) Create(ctx context.Context, path string, mode fs.FileMode, overwrite bool) error {
	res, err := ns.Resolve(path)
	if err != nil {
		return err
	}
	if res.Kind == ResolvedInternal {
		return fs.NewError("Create", res.Path, fs.ErrReadOnly)
	}
	store, p, err := ns.storeFor(res.Target)
	if err != nil {
		return err
	}
	return store.Create(ctx, p, mode, overwrite)
}

// Append appends to the backing object a virtual path routes to.
func (ns *Namespace) Append(ctx context.Context, path string, data []byte) (int, error) {
	res, err := ns.Resolve(path)
	if err != nil {
		return 0, err
	}
	if res.Kind == ResolvedInternal {
		return 0, fs.NewError("Append", res.Path, fs.ErrIsDir)
	}
	store, p, err := ns.storeFor(res.Target)
	if err != nil {
		return 0, err
	}
	return store.Append(ctx, p, data)
}

// Mkdir creates a directory through the namespace. A path that already
// names mount structure succeeds: the directory exists by configuration.
func (ns *Namespace) Mkdir(ctx context.Context, path string, mode fs.FileMode) error {
	res, err := ns.Resolve(path)
	if err != nil {
		return err
	}
	if res.Kind == ResolvedInternal {
		return nil
	}
	store, p, err := ns.storeFor(res.Target)
	if err != nil {
		return err
	}
	return store.Mkdir(ctx, p, mode)
}

// Delete removes the backing object a virtual path routes to. Mount
// structure itself can only be removed by reconfiguration.
func (ns *Namespace) Delete(ctx context.Context, path string, recursive bool) error {
	res, err := ns.Resolve(path)
	if err != nil {
		return err
	}
	if res.Kind == ResolvedInternal {
		return fs.NewError("Delete", res.Path, fs.ErrReadOnly)
	}
	store, p, err := ns.storeFor(res.Target)
	if err != nil {
		return err
	}
	return store.Delete(ctx, p, recursive)
}

// Close stops any config watcher and closes every cached store handle,
// aggregating their errors. The namespace must not be used afterwards.
func (ns *Namespace) Close() error {
	ns.mu.Lock()
	if ns.closed {
		ns.mu.Unlock()
		return nil
	}
	ns.closed = true
	watcher := ns.watcher
	ns.watcher = nil
	stores := ns.stores
	ns.stores = nil
	ns.mu.Unlock()

	var result *multierror.Error
	if watcher != nil {
		if err := watcher.stop(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for key, store := range stores {
		if err := store.Close(); err != nil {
			result = multierror.Append(result, fs.NewError("close", key, err))
		}
	}
	return result.ErrorOrNil()
}
