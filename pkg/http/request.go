package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// UnknownClientIP is returned when the peer address cannot be parsed
const UnknownClientIP = "unknown"

// IPConfig holds the proxies whose forwarding headers may be trusted
type IPConfig struct {
	TrustedProxies []string // CIDR ranges or single addresses
}

// trusts reports whether addr belongs to a configured proxy. Entries that
// fail to parse are skipped.
func (c *IPConfig) trusts(addr netip.Addr) bool {
	if c == nil || !addr.IsValid() {
		return false
	}
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			if prefix.Contains(addr) {
				return true
			}
			continue
		}
		if single, err := netip.ParseAddr(entry); err == nil && single.Unmap() == addr {
			return true
		}
	}
	return false
}

// ExtractClientIP returns the address a lockout should be keyed on.
//
// Forwarding headers are only read when the peer is a trusted proxy. The
// X-Forwarded-For chain is walked from the right, skipping trusted hops, so
// a client cannot pick its own identity by prepending addresses.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	peer, ok := remoteAddr(r)
	if !ok {
		return UnknownClientIP
	}
	if !config.trusts(peer) {
		return peer.String()
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := parseAddr(hops[i])
			if err != nil {
				break
			}
			if !config.trusts(hop) {
				return hop.String()
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if addr, err := parseAddr(xri); err == nil {
			return addr.String()
		}
	}

	return peer.String()
}

// remoteAddr parses RemoteAddr with or without a port
func remoteAddr(r *http.Request) (netip.Addr, bool) {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	addr, err := parseAddr(host)
	return addr, err == nil
}

// parseAddr drops IPv6 zones and unmaps IPv4-in-IPv6 so that the same
// client always produces the same string
func parseAddr(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, err
	}
	return addr.WithZone("").Unmap(), nil
}
