package viewfs

import (
	"context"
	"errors"
	"strings"

	"github.com/example/viewfs/pkg/fs"
)

// Permission reported for synthetic mount-structure directories and, in
// symlink mode, for link entries. Synthetic nodes have no backing object,
// so the bits are a fixed convention rather than anything enforced.
const (
	syntheticDirMode = fs.FileMode(0555)
	symlinkMode      = fs.FileMode(0777)
)

// status decides what metadata a resolved path presents to callers.
//
// A linked node is either surfaced as a symbolic reference to its target
// or live-stat'ed, depending on table configuration. An internal node is a
// synthetic directory, except that a fallback directory at the same
// virtual path lends it real metadata; a linked node never defers to the
// fallback that way.
func (ns *Namespace) status(ctx context.Context, t *MountTable, res Resolution) (fs.FileInfo, error) {
	switch res.Kind {
	case ResolvedLinked:
		if res.Remaining == "" && t.LinksAsSymlinks() {
			return ns.symlinkInfo(t, res.node), nil
		}
		return ns.statTarget(ctx, res.Target)

	case ResolvedFallback:
		return ns.statTarget(ctx, res.Target)

	default: // ResolvedInternal
		return ns.internalDirInfo(ctx, t, res.Path), nil
	}
}

// statTarget stats a fully translated backing-store URI.
func (ns *Namespace) statTarget(ctx context.Context, target string) (fs.FileInfo, error) {
	store, p, err := ns.storeFor(target)
	if err != nil {
		return fs.FileInfo{}, err
	}
	return store.GetAttr(ctx, p)
}

// symlinkInfo builds the symbolic-reference representation of a link.
func (ns *Namespace) symlinkInfo(t *MountTable, n *mountNode) fs.FileInfo {
	return fs.FileInfo{
		Type:          fs.FileTypeSymlink,
		Mode:          symlinkMode,
		Size:          int64(len(n.target)),
		Uid:           ns.uid,
		Gid:           ns.gid,
		ModTime:       t.builtAt,
		SymlinkTarget: n.target,
	}
}

// internalDirInfo reports an internal directory's metadata: the fallback
// directory at the same virtual path if one exists, synthetic defaults
// otherwise. Fallback trouble here is tolerated; the directory exists in
// the mount structure regardless of what the fallback store can say.
func (ns *Namespace) internalDirInfo(ctx context.Context, t *MountTable, vpath string) fs.FileInfo {
	if t.HasFallback() {
		target := joinTarget(t.Fallback(), strings.TrimPrefix(vpath, "/"))
		info, err := ns.statTarget(ctx, target)
		if err == nil && info.IsDir() {
			return info
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			ns.logger.Debug("fallback stat failed, using synthetic attributes",
				"path", vpath, "target", target, "err", err)
		}
	}
	return fs.FileInfo{
		Type:    fs.FileTypeDirectory,
		Mode:    syntheticDirMode,
		Uid:     ns.uid,
		Gid:     ns.gid,
		ModTime: t.builtAt,
	}
}

// childInfo reports the metadata for one mount-side child in a listing.
// The rules match status on the child's own path, so a name shows the same
// attributes whether it is listed or stat'ed directly.
func (ns *Namespace) childInfo(ctx context.Context, t *MountTable, child *mountNode) (fs.FileInfo, error) {
	if child.kind == nodeLinked {
		if t.LinksAsSymlinks() {
			return ns.symlinkInfo(t, child), nil
		}
		return ns.statTarget(ctx, child.target)
	}
	return ns.internalDirInfo(ctx, t, child.path), nil
}
