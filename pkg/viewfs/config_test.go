package viewfs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseKeys(t *testing.T) {
	cfg, err := ParseKeys(map[string]string{
		"link./a/b":            "mem://s1/ab",
		"link./data":           "file:///srv/data",
		"linkFallback":         "mem://fb",
		"mountLinksAsSymlinks": "false",
	})
	if err != nil {
		t.Fatalf("ParseKeys failed: %v", err)
	}

	if cfg.Links["/a/b"] != "mem://s1/ab" || cfg.Links["/data"] != "file:///srv/data" {
		t.Errorf("links = %v", cfg.Links)
	}
	if cfg.Fallback != "mem://fb" {
		t.Errorf("fallback = %q", cfg.Fallback)
	}
	if cfg.MountLinksAsSymlinks {
		t.Error("mountLinksAsSymlinks should be false")
	}
}

func TestParseKeysDefaults(t *testing.T) {
	cfg, err := ParseKeys(nil)
	if err != nil {
		t.Fatalf("ParseKeys failed: %v", err)
	}
	if !cfg.MountLinksAsSymlinks {
		t.Error("mountLinksAsSymlinks should default to true")
	}
}

// TestParseKeysRejectsFallbackWithPath: the fallback binding is root-only;
// a linkFallback key with a virtual-path suffix is a configuration error
// that names the offending key.
func TestParseKeysRejectsFallbackWithPath(t *testing.T) {
	_, err := ParseKeys(map[string]string{
		"linkFallback./user": "mem://fb",
	})
	if err == nil {
		t.Fatal("ParseKeys should fail")
	}
	if !errors.Is(err, ErrInvalidMountEntry) {
		t.Errorf("error = %v, want ErrInvalidMountEntry", err)
	}
	if !strings.Contains(err.Error(), "linkFallback./user") {
		t.Errorf("error %q should identify the offending key", err)
	}
}

func TestParseKeysRejectsBadInput(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown key":      {"linkMagic./a": "mem://x"},
		"empty link path":  {"link.": "mem://x"},
		"non-boolean flag": {"mountLinksAsSymlinks": "maybe"},
	}
	for name, keys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseKeys(keys); !errors.Is(err, ErrInvalidMountEntry) {
				t.Errorf("error = %v, want ErrInvalidMountEntry", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mounts.yaml")
	content := `links:
  /a/b: mem://s1/ab
  /data: file:///srv/data
fallback: mem://fb
mount_links_as_symlinks: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Links["/a/b"] != "mem://s1/ab" || cfg.Fallback != "mem://fb" || cfg.MountLinksAsSymlinks {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mounts.yaml")
	if err := os.WriteFile(path, []byte("links:\n  /a: mem://s1/a\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !cfg.MountLinksAsSymlinks {
		t.Error("mount_links_as_symlinks should default to true")
	}
}

// TestLoadFileRejectsUnknownFields: a typoed key fails loudly instead of
// silently dropping a mount point.
func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mounts.yaml")
	if err := os.WriteFile(path, []byte("lnks:\n  /a: mem://s1/a\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile should reject unknown fields")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadFile should fail on a missing file")
	}
}
