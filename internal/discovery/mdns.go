package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/lpac-console/internal/logging"
)

const (
	// ServiceType is the mDNS service type OpenWrt's uhttpd is usually
	// advertised under (by umdns or avahi)
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout bounds a scan
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an entry advertises no port
	DefaultPort = 80
)

// luciMarkers are substrings that identify an OpenWrt/LuCI web interface in
// an instance name, hostname or TXT record.
var luciMarkers = []string{"openwrt", "luci", "lede", "cgi-bin"}

// Scanner browses mDNS for routers
type Scanner struct {
	// Timeout is how long a scan listens for answers
	Timeout time.Duration

	// LuCIOnly drops entries that do not look like an OpenWrt web UI
	LuCIOnly bool
}

// NewScanner creates a scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan collects every router answering within the timeout. Results are
// de-duplicated by address, LuCI-looking entries first.
func (s *Scanner) Scan(ctx context.Context) ([]*Router, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	var (
		mu      sync.Mutex
		routers []*Router
		seen    = map[string]bool{}
	)
	go func() {
		defer close(done)
		for entry := range entries {
			r := s.parseServiceEntry(entry)
			if r == nil {
				continue
			}
			mu.Lock()
			if !seen[r.Address()] {
				seen[r.Address()] = true
				routers = append(routers, r)
				logging.Debug("Router discovered",
					zap.String("instance", r.Instance),
					zap.String("address", r.Address()),
					zap.Bool("luci", r.LikelyLuCI),
				)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// the resolver closes entries once ctx is done
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	sortRouters(routers)
	return routers, nil
}

// FindRouter waits for a router whose instance name or hostname contains
// name (case-insensitive).
func (s *Scanner) FindRouter(ctx context.Context, name string) (*Router, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Router, 1)
	needle := strings.ToLower(name)

	go func() {
		for entry := range entries {
			r := s.parseServiceEntry(entry)
			if r == nil {
				continue
			}
			if strings.Contains(strings.ToLower(r.Instance), needle) ||
				strings.Contains(strings.ToLower(r.Hostname), needle) {
				select {
				case found <- r:
				default:
				}
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case r := <-found:
		return r, nil
	case <-ctx.Done():
		select {
		case r := <-found:
			return r, nil
		default:
		}
		return nil, fmt.Errorf("router %q not found within %s", name, s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf entry into a Router, or nil when it
// has no usable address or LuCIOnly filters it out.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Router {
	if entry == nil || entry.HostName == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		k, v, _ := strings.Cut(txt, "=")
		metadata[k] = v
	}

	r := &Router{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
	r.LikelyLuCI = looksLikeLuCI(r)

	if s.LuCIOnly && !r.LikelyLuCI {
		return nil
	}
	return r
}

func looksLikeLuCI(r *Router) bool {
	haystack := []string{r.Instance, r.Hostname}
	for k, v := range r.Metadata {
		haystack = append(haystack, k, v)
	}
	for _, h := range haystack {
		h = strings.ToLower(h)
		for _, m := range luciMarkers {
			if strings.Contains(h, m) {
				return true
			}
		}
	}
	return false
}

func sortRouters(routers []*Router) {
	sort.SliceStable(routers, func(i, j int) bool {
		if routers[i].LikelyLuCI != routers[j].LikelyLuCI {
			return routers[i].LikelyLuCI
		}
		return routers[i].Address() < routers[j].Address()
	})
}

// QuickScan scans with a 3-second timeout
func QuickScan(ctx context.Context) ([]*Router, error) {
	s := NewScanner()
	s.Timeout = 3 * time.Second
	return s.Scan(ctx)
}
