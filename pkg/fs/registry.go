package fs

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// Provider constructs a FileSystem handle for one backing store. The URI
// passed in carries only the store identity (scheme and authority); paths
// within the store are supplied per call on the returned handle.
type Provider func(uri *url.URL) (FileSystem, error)

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Provider)
)

// RegisterProvider makes a provider available under the given URI scheme.
// Backing-store packages call this from their init function. Registering
// the same scheme twice panics, mirroring database/sql driver registration.
func RegisterProvider(scheme string, p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if p == nil {
		panic("fs: RegisterProvider with nil provider")
	}
	if _, dup := providers[scheme]; dup {
		panic("fs: RegisterProvider called twice for scheme " + scheme)
	}
	providers[scheme] = p
}

// Open constructs a store handle for the given store-identity URI.
func Open(uri *url.URL) (FileSystem, error) {
	providersMu.RLock()
	p, ok := providers[uri.Scheme]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("fs: no provider registered for scheme %q (registered: %v)", uri.Scheme, Schemes())
	}
	return p(uri)
}

// Schemes returns the sorted list of registered provider schemes.
func Schemes() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	out := make([]string, 0, len(providers))
	for s := range providers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
