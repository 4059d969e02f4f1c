package viewfs

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration keys for the flat key-value surface. A mount table is
// described by one link.<virtualPath> key per mount point, at most one
// linkFallback key, and the mountLinksAsSymlinks toggle.
const (
	LinkKeyPrefix = "link."
	FallbackKey   = "linkFallback"
	SymlinksKey   = "mountLinksAsSymlinks"
)

// Config describes a composed namespace: its mount points, the optional
// fallback store and how linked nodes are represented to callers.
type Config struct {
	// Links maps virtual path prefixes to backing-store URIs.
	Links map[string]string `yaml:"links"`

	// Fallback is the backing-store URI consulted for any path not
	// covered by an explicit link. Empty means no fallback.
	Fallback string `yaml:"fallback"`

	// MountLinksAsSymlinks reports link entries as symbolic references
	// instead of live-resolved objects.
	MountLinksAsSymlinks bool `yaml:"mount_links_as_symlinks"`
}

// DefaultConfig returns an empty configuration with default toggles.
func DefaultConfig() Config {
	return Config{
		Links:                make(map[string]string),
		MountLinksAsSymlinks: true,
	}
}

// ParseKeys builds a Config from flat key-value pairs. Any linkFallback
// key carrying a virtual-path suffix and any key outside the configuration
// surface is rejected, naming the offending key.
func ParseKeys(keys map[string]string) (Config, error) {
	cfg := DefaultConfig()

	// Deterministic error reporting regardless of map iteration order.
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, key := range names {
		value := keys[key]
		switch {
		case key == FallbackKey:
			cfg.Fallback = value
		case strings.HasPrefix(key, FallbackKey+"."):
			return Config{}, fmt.Errorf("invalid %s entry in config: %s: %w", FallbackKey, key, ErrInvalidMountEntry)
		case strings.HasPrefix(key, LinkKeyPrefix):
			vpath := strings.TrimPrefix(key, LinkKeyPrefix)
			if vpath == "" {
				return Config{}, fmt.Errorf("invalid link entry in config: %s: %w", key, ErrInvalidMountEntry)
			}
			cfg.Links[vpath] = value
		case key == SymlinksKey:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s value %q: %w", SymlinksKey, value, ErrInvalidMountEntry)
			}
			cfg.MountLinksAsSymlinks = b
		default:
			return Config{}, fmt.Errorf("unrecognized mount config key: %s: %w", key, ErrInvalidMountEntry)
		}
	}
	return cfg, nil
}

// LoadFile reads a Config from a YAML file. Unknown fields are rejected so
// a typoed key fails loudly instead of silently dropping a mount point.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading mount config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("parsing mount config %s: %w", path, err)
	}
	if cfg.Links == nil {
		cfg.Links = make(map[string]string)
	}
	return cfg, nil
}
