package gateway

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the client address used as the rate-limit
// identifier. X-Forwarded-For is honored (first hop) so the limiter
// keys on the real client when a proxy sits in front; otherwise the
// socket address is used, port stripped.
//
// The limiter itself accepts any string, empty included, so a request
// with an unparsable address still gets counted (it just shares the
// fallback key with its lookalikes).
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
