package viewfs

import (
	"strings"

	"github.com/example/viewfs/pkg/fs"
)

// normalizePath resolves "." and ".." segments lexically, collapses
// repeated separators and strips any trailing separator. The input must be
// absolute; a path that climbs above the root fails with ErrInvalidPath.
// No backing store is consulted.
func normalizePath(p string) (string, error) {
	if p == "" || p[0] != '/' {
		return "", fs.NewError("normalize", p, ErrInvalidPath)
	}

	segs := make([]string, 0, 8)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			// collapsed separator or no-op segment
		case "..":
			if len(segs) == 0 {
				return "", fs.NewError("normalize", p, ErrInvalidPath)
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}

	if len(segs) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(segs, "/"), nil
}

// splitPath breaks a normalized absolute path into its segments. The root
// path yields no segments.
func splitPath(p string) []string {
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// childPath joins a parent path with one segment name.
func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// joinTarget appends a relative path to a backing-store URI.
func joinTarget(target, rel string) string {
	if rel == "" {
		return target
	}
	return strings.TrimSuffix(target, "/") + "/" + strings.TrimPrefix(rel, "/")
}
