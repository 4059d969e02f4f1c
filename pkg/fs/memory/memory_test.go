package memory

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/example/viewfs/pkg/fs"
)

func setupTestStore(t *testing.T, name string) *Store {
	t.Helper()
	Reset(name)
	t.Cleanup(func() { Reset(name) })
	return Get(name)
}

func TestStore_Interface(t *testing.T) {
	var _ fs.FileSystem = (*Store)(nil)
}

// TestStore_SharedByName: handles opened for the same name see one tree.
func TestStore_SharedByName(t *testing.T) {
	ctx := context.Background()
	a := setupTestStore(t, "mem-shared")
	b := Get("mem-shared")

	if err := a.Mkdir(ctx, "/dir", 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if _, err := b.GetAttr(ctx, "/dir"); err != nil {
		t.Errorf("second handle does not see the directory: %v", err)
	}

	other := setupTestStore(t, "mem-other")
	if _, err := other.GetAttr(ctx, "/dir"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("distinct names must be distinct trees: %v", err)
	}
}

// TestStore_Provider: the mem scheme resolves through the registry, keyed
// by authority.
func TestStore_Provider(t *testing.T) {
	ctx := context.Background()
	seeded := setupTestStore(t, "mem-prov")
	if err := seeded.Create(ctx, "/f.txt", 0644, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	opened, err := fs.Open(&url.URL{Scheme: "mem", Host: "mem-prov"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := opened.GetAttr(ctx, "/f.txt"); err != nil {
		t.Errorf("provider handle does not see seeded file: %v", err)
	}
}

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, "mem-rw")

	if err := store.Create(ctx, "/f.txt", 0644, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(ctx, "/f.txt", 0644, false); !errors.Is(err, fs.ErrExist) {
		t.Errorf("exclusive Create: error = %v, want ErrExist", err)
	}
	if err := store.Create(ctx, "/f.txt", 0644, true); err != nil {
		t.Errorf("overwrite Create failed: %v", err)
	}

	if _, err := store.Append(ctx, "/f.txt", []byte("hello")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := store.Append(ctx, "/f.txt", []byte(" world")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, eof, err := store.Read(ctx, "/f.txt", 0, 64)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "hello world" || !eof {
		t.Errorf("Read = %q eof=%v", data, eof)
	}

	if _, err := store.Append(ctx, "/missing", []byte("x")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Append to missing: error = %v, want ErrNotExist", err)
	}
}

func TestStore_ListMkdirDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, "mem-lmd")

	if err := store.Mkdir(ctx, "/a/b", 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := store.Create(ctx, "/a/b/f.txt", 0644, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	entries, err := store.List(ctx, "/a/b")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "f.txt" {
		t.Errorf("unexpected listing: %v", entries)
	}

	if _, err := store.List(ctx, "/a/b/f.txt"); !errors.Is(err, fs.ErrNotDir) {
		t.Errorf("List on file: error = %v, want ErrNotDir", err)
	}

	if err := store.Delete(ctx, "/a", false); !errors.Is(err, fs.ErrNotEmpty) {
		t.Errorf("non-recursive Delete: error = %v, want ErrNotEmpty", err)
	}
	if err := store.Delete(ctx, "/a", true); err != nil {
		t.Fatalf("recursive Delete failed: %v", err)
	}
	if _, err := store.GetAttr(ctx, "/a"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("deleted tree still visible: %v", err)
	}
}
