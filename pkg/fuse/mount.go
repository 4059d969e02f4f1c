package fuse

import (
	"fmt"
	"log/slog"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/example/viewfs/pkg/viewfs"
)

// MountOptions contains options for mounting the namespace.
type MountOptions struct {
	MountPoint   string
	ReadOnly     bool
	AllowOther   bool
	CacheTimeout time.Duration
	Debug        bool
}

// Mount mounts the namespace at the given mount point and serves FUSE
// requests until the kernel unmounts it. It blocks; call Unmount from
// another goroutine (or via a signal handler) to stop it.
func Mount(ns *viewfs.Namespace, options MountOptions) error {
	mountOpts := []fuse.MountOption{
		fuse.FSName("viewfs"),
		fuse.Subtype("viewfs"),
	}
	if options.ReadOnly {
		mountOpts = append(mountOpts, fuse.ReadOnly())
	}
	if options.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}
	if options.Debug {
		fuse.Debug = func(msg interface{}) {
			slog.Debug("fuse", "msg", fmt.Sprint(msg))
		}
	}

	c, err := fuse.Mount(options.MountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", options.MountPoint, err)
	}
	defer c.Close()

	slog.Info("serving namespace", "mountpoint", options.MountPoint)
	if err := fusefs.Serve(c, NewFS(ns, options.CacheTimeout)); err != nil {
		return fmt.Errorf("serve failed: %w", err)
	}
	return nil
}

// Unmount unmounts the filesystem
func Unmount(mountPoint string) error {
	return fuse.Unmount(mountPoint)
}
