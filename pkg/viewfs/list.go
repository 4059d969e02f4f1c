package viewfs

import (
	"context"
	"sort"
	"strings"

	"github.com/example/viewfs/pkg/fs"
)

// list composes the child set of a resolved directory.
//
// Internal directories merge two sources: the mount tree's own children
// and, when a fallback store is configured, the entries of the fallback
// directory at the same virtual path. A name present in both sources is
// shaded: the mount-side entry wins entirely and the fallback entry is
// dropped. Fallback enumeration is best effort — an absent directory or a
// failing fallback store contributes an empty set, never an error.
//
// Linked directories list their backing store; nested mount points
// beneath the link shade same-named backing entries the same way. Errors
// from the primary backing store are propagated as-is.
func (ns *Namespace) list(ctx context.Context, t *MountTable, res Resolution) ([]fs.DirEntry, error) {
	switch res.Kind {
	case ResolvedFallback:
		store, p, err := ns.storeFor(res.Target)
		if err != nil {
			return nil, err
		}
		return store.List(ctx, p)

	case ResolvedLinked:
		store, p, err := ns.storeFor(res.Target)
		if err != nil {
			return nil, err
		}
		entries, err := store.List(ctx, p)
		if err != nil {
			return nil, err
		}
		if res.Remaining != "" || len(res.node.children) == 0 {
			return entries, nil
		}
		mountSide, err := ns.mountChildren(ctx, t, res.node)
		if err != nil {
			return nil, err
		}
		return mergeShaded(mountSide, entries), nil

	default: // ResolvedInternal
		mountSide, err := ns.mountChildren(ctx, t, res.node)
		if err != nil {
			return nil, err
		}
		return mergeShaded(mountSide, ns.fallbackChildren(ctx, t, res.Path)), nil
	}
}

// mountChildren builds the mount-side entries for a node's tree children.
func (ns *Namespace) mountChildren(ctx context.Context, t *MountTable, n *mountNode) ([]fs.DirEntry, error) {
	entries := make([]fs.DirEntry, 0, len(n.children))
	for _, name := range n.children {
		child := t.node(childPath(n.path, name))
		info, err := ns.childInfo(ctx, t, child)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fs.DirEntry{Name: name, Info: info})
	}
	return entries, nil
}

// fallbackChildren lists the fallback directory corresponding to a
// virtual path. Any failure yields an empty set.
func (ns *Namespace) fallbackChildren(ctx context.Context, t *MountTable, vpath string) []fs.DirEntry {
	if !t.HasFallback() {
		return nil
	}
	target := joinTarget(t.Fallback(), strings.TrimPrefix(vpath, "/"))
	store, p, err := ns.storeFor(target)
	if err != nil {
		ns.logger.Debug("fallback store unavailable for listing", "path", vpath, "err", err)
		return nil
	}
	entries, err := store.List(ctx, p)
	if err != nil {
		ns.logger.Debug("fallback listing skipped", "path", vpath, "target", target, "err", err)
		return nil
	}
	return entries
}

// mergeShaded merges the two listing sources. Mount-side entries win on
// name collision; the result is sorted by name.
func mergeShaded(mountSide, fallbackSide []fs.DirEntry) []fs.DirEntry {
	byName := make(map[string]fs.DirEntry, len(mountSide)+len(fallbackSide))
	for _, e := range fallbackSide {
		byName[e.Name] = e
	}
	for _, e := range mountSide {
		byName[e.Name] = e
	}

	merged := make([]fs.DirEntry, 0, len(byName))
	for _, e := range byName {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged
}
