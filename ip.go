package oauthpopup

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// privatePrefixes are address ranges that never identify the browser,
// only proxies and load balancers in front of us.
var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
}

func isPrivate(addr string) bool {
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range privatePrefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// getIP returns a best guess at the IP a request came from, for logging.
// The first public address in X-Forwarded-For wins, then X-Real-Ip, then
// the connection's remote address.
func getIP(r *http.Request) string {
	for _, addr := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" || isPrivate(addr) {
			continue
		}
		return addr
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
