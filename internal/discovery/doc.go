// Package discovery finds OpenWrt routers on the local network over mDNS.
//
// OpenWrt advertises uhttpd as an "_http._tcp" service when umdns or avahi
// is installed. The scanner collects every such service and flags the ones
// whose instance name, hostname or TXT records mention OpenWrt or LuCI. It
// does not talk to the lpac API itself; the scan command probes each result
// with check_lpac afterwards.
//
//	routers, err := discovery.NewScanner().Scan(ctx)
//	for _, r := range routers {
//	    fmt.Println(r.BaseURL(), r.LikelyLuCI)
//	}
//
// mDNS needs multicast on the interface and UDP port 5353 open.
package discovery
