package viewfs

import (
	"strings"

	"github.com/example/viewfs/pkg/fs"
)

// ResolutionKind classifies the outcome of resolving a virtual path.
type ResolutionKind int

const (
	// ResolvedInternal means the path lands exactly on a synthetic
	// mount-structure directory with no backing of its own.
	ResolvedInternal ResolutionKind = iota
	// ResolvedLinked means a configured mount point covers the path.
	ResolvedLinked
	// ResolvedFallback means no link covers the path and it is served
	// by the fallback store.
	ResolvedFallback
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolvedInternal:
		return "internal"
	case ResolvedLinked:
		return "linked"
	case ResolvedFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of routing one virtual path through the mount
// table.
type Resolution struct {
	// Kind classifies the matched node.
	Kind ResolutionKind

	// Path is the normalized virtual path that was resolved.
	Path string

	// MountPath is the virtual path of the matched mount node. For
	// ResolvedFallback it names the deepest internal directory reached
	// before the walk ran out of tree.
	MountPath string

	// Target is the fully translated backing-store URI for the path.
	// Empty for ResolvedInternal: a synthetic directory has no direct
	// backing, only synthesized children.
	Target string

	// Remaining is the path below the matched node ("" when the path
	// matched exactly). For ResolvedFallback it is the whole virtual
	// path relative to the root, since the fallback is root-anchored.
	Remaining string

	node *mountNode
}

// resolve normalizes vpath and walks the tree from the root. The deepest
// linked node passed on the walk wins; segments beyond it become the
// remaining path. A tail that no tree child matches is satisfiable only
// through the fallback store. With no linked ancestor and no fallback the
// path does not exist.
func (t *MountTable) resolve(vpath string) (Resolution, error) {
	norm, err := normalizePath(vpath)
	if err != nil {
		return Resolution{}, err
	}

	segs := splitPath(norm)
	cur := t.nodes["/"]
	var lastLinked *mountNode
	lastLinkedDepth := 0
	consumed := len(segs)

	for i, seg := range segs {
		child, ok := t.nodes[childPath(cur.path, seg)]
		if !ok {
			consumed = i
			break
		}
		cur = child
		if cur.kind == nodeLinked {
			lastLinked = cur
			lastLinkedDepth = i + 1
		}
	}

	if consumed == len(segs) {
		// The whole path is mount structure. An exact linked hit
		// delegates; an exact internal hit is purely synthetic.
		if cur.kind == nodeLinked {
			return Resolution{
				Kind:      ResolvedLinked,
				Path:      norm,
				MountPath: cur.path,
				Target:    cur.target,
				node:      cur,
			}, nil
		}
		return Resolution{
			Kind:      ResolvedInternal,
			Path:      norm,
			MountPath: cur.path,
			node:      cur,
		}, nil
	}

	if lastLinked != nil {
		remaining := strings.Join(segs[lastLinkedDepth:], "/")
		return Resolution{
			Kind:      ResolvedLinked,
			Path:      norm,
			MountPath: lastLinked.path,
			Target:    joinTarget(lastLinked.target, remaining),
			Remaining: remaining,
			node:      lastLinked,
		}, nil
	}

	if t.HasFallback() {
		remaining := strings.TrimPrefix(norm, "/")
		return Resolution{
			Kind:      ResolvedFallback,
			Path:      norm,
			MountPath: cur.path,
			Target:    joinTarget(t.fallback, remaining),
			Remaining: remaining,
			node:      cur,
		}, nil
	}

	return Resolution{}, fs.NewError("resolve", norm, fs.ErrNotExist)
}
