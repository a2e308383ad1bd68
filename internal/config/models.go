package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CurrentVersion is the only registry file version this build reads
const CurrentVersion = 1

// Registry is the whole user configuration file: remembered routers and
// console preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Default     string             `yaml:"default,omitempty"` // Name of the router used when --router is not given
	Routers     map[string]*Router `yaml:"routers,omitempty"` // Keyed by a user-chosen name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Router is one remembered OpenWrt router running luci-app-lpac.
// The LuCI session token is never stored here.
type Router struct {
	Address      string    `yaml:"address"`                 // host, host:port or URL
	APIPath      string    `yaml:"api_path,omitempty"`      // Overrides the default CGI path
	PostEncoding string    `yaml:"post_encoding,omitempty"` // "json" or "form"
	LastSeen     time.Time `yaml:"last_seen,omitempty"`
	LpacVersion  string    `yaml:"lpac_version,omitempty"` // From the last successful check_lpac
}

// Preferences are defaults for command line flags
type Preferences struct {
	Format      string `yaml:"format,omitempty"`       // detailed, compact or json
	ReadTimeout int    `yaml:"read_timeout,omitempty"` // Seconds; 0 keeps the built-in default
	ScanTimeout int    `yaml:"scan_timeout,omitempty"` // Seconds
}

// NewRegistry creates an empty registry with default preferences
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Routers:     make(map[string]*Router),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		Format:      "detailed",
		ReadTimeout: 30,
		ScanTimeout: 5,
	}
}

// GetRouter returns the router saved under name, or nil
func (r *Registry) GetRouter(name string) *Router {
	return r.Routers[name]
}

// Names returns the saved router names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Routers))
	for n := range r.Routers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AddRouter saves address under name, replacing any previous entry. The
// first router added becomes the default.
func (r *Registry) AddRouter(name, address string) (*Router, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		return nil, fmt.Errorf("router name is required")
	}
	if address == "" {
		return nil, fmt.Errorf("router address is required")
	}
	if r.Routers == nil {
		r.Routers = make(map[string]*Router)
	}

	router := &Router{Address: address}
	if prev, ok := r.Routers[name]; ok {
		router.APIPath = prev.APIPath
		router.PostEncoding = prev.PostEncoding
	}
	r.Routers[name] = router
	if r.Default == "" {
		r.Default = name
	}
	return router, nil
}

// RemoveRouter deletes a saved router and clears the default if it pointed
// at it.
func (r *Registry) RemoveRouter(name string) error {
	if _, ok := r.Routers[name]; !ok {
		return fmt.Errorf("no saved router named %q", name)
	}
	delete(r.Routers, name)
	if r.Default == name {
		r.Default = ""
	}
	return nil
}

// SetDefault makes name the router used when none is given
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.Routers[name]; !ok {
		return fmt.Errorf("no saved router named %q", name)
	}
	r.Default = name
	return nil
}

// Resolve turns a --router value into a Router. A saved name resolves to its
// entry; anything else is taken as an address. An empty value resolves to
// the default router, or nil when there is none.
func (r *Registry) Resolve(value string) *Router {
	value = strings.TrimSpace(value)
	if value == "" {
		if r.Default == "" {
			return nil
		}
		return r.Routers[r.Default]
	}
	if saved, ok := r.Routers[value]; ok {
		return saved
	}
	return &Router{Address: value}
}

// MarkSeen records a successful contact with the router at address
func (r *Registry) MarkSeen(address, lpacVersion string) {
	for _, router := range r.Routers {
		if router.Address == address {
			router.LastSeen = time.Now()
			if lpacVersion != "" {
				router.LpacVersion = lpacVersion
			}
		}
	}
}
