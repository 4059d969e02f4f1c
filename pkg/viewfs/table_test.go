package viewfs

import (
	"errors"
	"reflect"
	"testing"
)

func TestMountTableBuild(t *testing.T) {
	cfg := Config{
		Links: map[string]string{
			"/a/b":     "mem://s1/ab",
			"/a/c/d":   "mem://s2/acd",
			"/a/c/e":   "mem://s2/ace",
			"/top":     "mem://s3/top",
			"/top/sub": "mem://s3/sub",
		},
		Fallback: "mem://fb",
	}

	tbl, err := NewMountTable(cfg)
	if err != nil {
		t.Fatalf("NewMountTable failed: %v", err)
	}

	if !tbl.HasFallback() || tbl.Fallback() != "mem://fb" {
		t.Errorf("fallback = %q, want mem://fb", tbl.Fallback())
	}

	want := []string{"/a/b", "/a/c/d", "/a/c/e", "/top", "/top/sub"}
	if got := tbl.MountPoints(); !reflect.DeepEqual(got, want) {
		t.Errorf("MountPoints() = %v, want %v", got, want)
	}

	// Ancestors without links of their own are synthesized as internal
	// nodes; terminal segments carry the link.
	for path, kind := range map[string]nodeKind{
		"/":      nodeInternal,
		"/a":     nodeInternal,
		"/a/c":   nodeInternal,
		"/a/b":   nodeLinked,
		"/top":   nodeLinked,
		"/a/c/d": nodeLinked,
	} {
		n := tbl.node(path)
		if n == nil {
			t.Errorf("node(%q) missing", path)
			continue
		}
		if n.kind != kind {
			t.Errorf("node(%q).kind = %v, want %v", path, n.kind, kind)
		}
	}

	// A linked node may host deeper links.
	if got := tbl.node("/top").children; !reflect.DeepEqual(got, []string{"sub"}) {
		t.Errorf("node(/top).children = %v", got)
	}
	if got := tbl.node("/a").children; !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("node(/a).children = %v", got)
	}
}

func TestMountTableRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{
			name: "duplicate link after normalization",
			cfg: Config{Links: map[string]string{
				"/a/b":  "mem://s1/x",
				"/a//b": "mem://s1/x",
			}},
		},
		{
			name: "redefinition with different target",
			cfg: Config{Links: map[string]string{
				"/a/b/": "mem://s1/x",
				"/a/b":  "mem://s2/y",
			}},
		},
		{
			name: "link at namespace root",
			cfg:  Config{Links: map[string]string{"/": "mem://s1/x"}},
		},
		{
			name: "relative link path",
			cfg:  Config{Links: map[string]string{"a/b": "mem://s1/x"}},
		},
		{
			name: "path escaping the root",
			cfg:  Config{Links: map[string]string{"/../a": "mem://s1/x"}},
		},
		{
			name: "target without scheme",
			cfg:  Config{Links: map[string]string{"/a": "/no/scheme"}},
		},
		{
			name: "fallback target without scheme",
			cfg:  Config{Fallback: "/no/scheme"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMountTable(tc.cfg)
			if err == nil {
				t.Fatal("NewMountTable should fail")
			}
			if !errors.Is(err, ErrInvalidMountEntry) {
				t.Errorf("error = %v, want ErrInvalidMountEntry", err)
			}
		})
	}
}

// TestMountTableEmpty ensures a table with no links and no fallback still
// builds: the namespace then consists of a single empty root directory.
func TestMountTableEmpty(t *testing.T) {
	tbl, err := NewMountTable(Config{})
	if err != nil {
		t.Fatalf("NewMountTable failed: %v", err)
	}
	root := tbl.node("/")
	if root == nil || root.kind != nodeInternal || len(root.children) != 0 {
		t.Errorf("unexpected root node: %+v", root)
	}
}
