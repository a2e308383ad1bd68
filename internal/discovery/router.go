package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Router is an HTTP service seen on the local network that may host the
// luci-app-lpac API.
type Router struct {
	// Instance is the advertised service instance name (e.g., "OpenWrt")
	Instance string

	// Hostname is the mDNS hostname (e.g., "openwrt.local.")
	Hostname string

	// IP is the address to connect to; IPv4 is preferred
	IP string

	// Port is the HTTP port (80 when not advertised)
	Port int

	// Metadata holds the TXT record key/value pairs
	Metadata map[string]string

	// LikelyLuCI is set when the name or TXT records point at an OpenWrt web UI
	LikelyLuCI bool

	DiscoveredAt time.Time
}

// String returns a human-readable description of the router
func (r *Router) String() string {
	return fmt.Sprintf("%s (%s) at %s", r.Instance, r.Hostname, r.Address())
}

// Address returns host:port, bracketing IPv6 addresses
func (r *Router) Address() string {
	return net.JoinHostPort(r.IP, strconv.Itoa(r.Port))
}

// BaseURL returns the HTTP origin for gateway.NewClientWithURL
func (r *Router) BaseURL() string {
	return "http://" + r.Address()
}

// GetMetadata retrieves a TXT value by key, or "" when absent
func (r *Router) GetMetadata(key string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}
