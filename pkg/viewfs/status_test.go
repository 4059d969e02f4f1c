package viewfs

import (
	"context"
	"errors"
	"testing"

	"github.com/example/viewfs/pkg/fs"
)

// TestGetAttrSymlinkRepresentation: with symlink representation on, a
// mount point reports as a symbolic reference to its target URI.
func TestGetAttrSymlinkRepresentation(t *testing.T) {
	seedStore(t, "st-l1")

	ns := newTestNamespace(t, Config{
		Links: map[string]string{"/a/b": "mem://st-l1/ab"},
	})

	info, err := ns.GetAttr(context.Background(), "/a/b")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if info.Type != fs.FileTypeSymlink {
		t.Errorf("type = %v, want symlink", info.Type)
	}
	if info.SymlinkTarget != "mem://st-l1/ab" {
		t.Errorf("symlink target = %q", info.SymlinkTarget)
	}
}

// TestGetAttrLinkedLiveStat: with symlink representation off, a mount
// point reports the live metadata of the object at its target.
func TestGetAttrLinkedLiveStat(t *testing.T) {
	linkFs := seedStore(t, "st-l2")
	mkdirAll(t, linkFs, "/ab", 0711)

	ns := newTestNamespace(t, Config{
		Links:                map[string]string{"/a/b": "mem://st-l2/ab"},
		MountLinksAsSymlinks: false,
	})

	info, err := ns.GetAttr(context.Background(), "/a/b")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if info.Type != fs.FileTypeDirectory {
		t.Errorf("type = %v, want directory", info.Type)
	}
	if info.Mode != fs.FileMode(0711) {
		t.Errorf("mode = %o, want 711", uint32(info.Mode))
	}
}

// TestGetAttrDanglingLink: a live-resolved link whose target is missing
// propagates the backing store's miss.
func TestGetAttrDanglingLink(t *testing.T) {
	seedStore(t, "st-l3")

	ns := newTestNamespace(t, Config{
		Links:                map[string]string{"/dangling": "mem://st-l3/missing"},
		MountLinksAsSymlinks: false,
	})

	if _, err := ns.GetAttr(context.Background(), "/dangling"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

// TestGetAttrInternalSynthetic: an internal directory with no fallback
// presence reports the fixed synthetic defaults.
func TestGetAttrInternalSynthetic(t *testing.T) {
	ns := newTestNamespace(t, Config{
		Links: map[string]string{"/a/b": "mem://st-l4/ab"},
	})

	info, err := ns.GetAttr(context.Background(), "/a")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if info.Type != fs.FileTypeDirectory {
		t.Errorf("type = %v, want directory", info.Type)
	}
	if info.Mode != syntheticDirMode {
		t.Errorf("mode = %o, want %o", uint32(info.Mode), uint32(syntheticDirMode))
	}
}

// TestGetAttrInternalFallbackMetadata: a fallback directory at the same
// virtual path lends the internal node its metadata.
func TestGetAttrInternalFallbackMetadata(t *testing.T) {
	fbFs := seedStore(t, "st-f5")
	mkdirAll(t, fbFs, "/a", 0700)

	ns := newTestNamespace(t, Config{
		Links:    map[string]string{"/a/b": "mem://st-l5/ab"},
		Fallback: "mem://st-f5",
	})

	info, err := ns.GetAttr(context.Background(), "/a")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if info.Mode != fs.FileMode(0700) {
		t.Errorf("mode = %o, want 700 (fallback metadata)", uint32(info.Mode))
	}
}

// TestGetAttrOwnStatusShading: shading applies to a path's own status,
// not just to listings of its parent — a linked node never defers to a
// same-named fallback object.
func TestGetAttrOwnStatusShading(t *testing.T) {
	linkFs := seedStore(t, "st-l6")
	mkdirAll(t, linkFs, "/data", 0746)
	fbFs := seedStore(t, "st-f6")
	mkdirAll(t, fbFs, "/u", 0744)

	ns := newTestNamespace(t, Config{
		Links:                map[string]string{"/u": "mem://st-l6/data"},
		Fallback:             "mem://st-f6",
		MountLinksAsSymlinks: false,
	})

	info, err := ns.GetAttr(context.Background(), "/u")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if info.Mode != fs.FileMode(0746) {
		t.Errorf("mode = %o, want 746 (mount side wins)", uint32(info.Mode))
	}
}

// TestGetAttrFallbackObject: paths satisfied only by the fallback report
// the fallback object's metadata verbatim.
func TestGetAttrFallbackObject(t *testing.T) {
	fbFs := seedStore(t, "st-f7")
	writeFile(t, fbFs, "/notes.txt", "hello")

	ns := newTestNamespace(t, Config{Fallback: "mem://st-f7"})

	info, err := ns.GetAttr(context.Background(), "/notes.txt")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if info.Type != fs.FileTypeRegular || info.Size != int64(len("hello")) {
		t.Errorf("unexpected info: %+v", info)
	}

	if _, err := ns.GetAttr(context.Background(), "/absent"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

// TestGetAttrRoot: the namespace root always stats as a directory, with
// fallback metadata when the fallback root exists.
func TestGetAttrRoot(t *testing.T) {
	ns := newTestNamespace(t, Config{
		Links: map[string]string{"/a/b": "mem://st-l8/ab"},
	})

	info, err := ns.GetAttr(context.Background(), "/")
	if err != nil {
		t.Fatalf("GetAttr(/) failed: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("root should be a directory: %+v", info)
	}
}
