package viewfs

import (
	"fmt"
	"net/url"
	"sort"
	"time"
)

type nodeKind int

const (
	// nodeInternal is a synthetic directory with no backing of its own,
	// present only because mount points exist below it.
	nodeInternal nodeKind = iota
	// nodeLinked is a configured mount point.
	nodeLinked
)

// mountNode is one node of the mount tree. Nodes live in the table's arena
// keyed by normalized virtual path and are immutable once the table is
// built.
type mountNode struct {
	path     string
	kind     nodeKind
	target   string   // backing-store URI, nodeLinked only
	children []string // sorted child segment names
}

// MountTable is the immutable routing tree of a composed namespace. It is
// built once from a Config and never mutated; reconfiguration replaces the
// whole table. Any number of goroutines may resolve against it
// concurrently.
type MountTable struct {
	nodes           map[string]*mountNode
	fallback        string
	linksAsSymlinks bool
	builtAt         time.Time
}

// NewMountTable validates cfg and builds the routing tree. Link entries
// are inserted segment by segment, synthesizing internal nodes for missing
// ancestors. Duplicate mount points, redefinition of a linked node and
// malformed entries fail with ErrInvalidMountEntry.
func NewMountTable(cfg Config) (*MountTable, error) {
	t := &MountTable{
		nodes:           make(map[string]*mountNode),
		fallback:        cfg.Fallback,
		linksAsSymlinks: cfg.MountLinksAsSymlinks,
		builtAt:         time.Now(),
	}
	t.nodes["/"] = &mountNode{path: "/"}

	if cfg.Fallback != "" {
		if err := checkTargetURI(cfg.Fallback); err != nil {
			return nil, fmt.Errorf("%s target %q: %w: %v", FallbackKey, cfg.Fallback, ErrInvalidMountEntry, err)
		}
	}

	// Deterministic build order so validation failures are stable.
	vpaths := make([]string, 0, len(cfg.Links))
	for vp := range cfg.Links {
		vpaths = append(vpaths, vp)
	}
	sort.Strings(vpaths)

	for _, vp := range vpaths {
		if err := t.addLink(vp, cfg.Links[vp]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func checkTargetURI(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return fmt.Errorf("target URI %q has no scheme", target)
	}
	return nil
}

func (t *MountTable) addLink(vpath, target string) error {
	norm, err := normalizePath(vpath)
	if err != nil {
		return fmt.Errorf("link path %q: %w", vpath, ErrInvalidMountEntry)
	}
	if norm == "/" {
		return fmt.Errorf("link path %q: mount point at namespace root (use %s): %w", vpath, FallbackKey, ErrInvalidMountEntry)
	}
	if err := checkTargetURI(target); err != nil {
		return fmt.Errorf("link %s target %q: %w: %v", norm, target, ErrInvalidMountEntry, err)
	}

	cur := t.nodes["/"]
	segs := splitPath(norm)
	for i, seg := range segs {
		cp := childPath(cur.path, seg)
		child, ok := t.nodes[cp]
		if !ok {
			child = &mountNode{path: cp}
			t.nodes[cp] = child
			cur.children = insertName(cur.children, seg)
		}

		if i == len(segs)-1 {
			if child.kind == nodeLinked {
				if child.target == target {
					return fmt.Errorf("duplicate link entry for %s: %w", norm, ErrInvalidMountEntry)
				}
				return fmt.Errorf("link %s already mapped to %s, cannot remap to %s: %w", norm, child.target, target, ErrInvalidMountEntry)
			}
			child.kind = nodeLinked
			child.target = target
		}
		cur = child
	}
	return nil
}

// insertName adds a name to a sorted slice, keeping it sorted and unique.
func insertName(names []string, name string) []string {
	i := sort.SearchStrings(names, name)
	if i < len(names) && names[i] == name {
		return names
	}
	names = append(names, "")
	copy(names[i+1:], names[i:])
	names[i] = name
	return names
}

// node returns the mount node at a normalized virtual path, or nil.
func (t *MountTable) node(path string) *mountNode {
	return t.nodes[path]
}

// HasFallback reports whether a fallback store is configured.
func (t *MountTable) HasFallback() bool {
	return t.fallback != ""
}

// Fallback returns the fallback store URI, or the empty string.
func (t *MountTable) Fallback() string {
	return t.fallback
}

// LinksAsSymlinks reports whether linked nodes are represented as
// symbolic references.
func (t *MountTable) LinksAsSymlinks() bool {
	return t.linksAsSymlinks
}

// MountPoints returns the configured virtual paths in sorted order.
func (t *MountTable) MountPoints() []string {
	var out []string
	for p, n := range t.nodes {
		if n.kind == nodeLinked {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
