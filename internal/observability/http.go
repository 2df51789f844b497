package observability

import (
	"net"
	"net/http"
	"strings"
)

// ClientInfo identifies where a websocket connection came from.
type ClientInfo struct {
	DeviceID  string
	IP        string
	RequestID string
	UserAgent string
}

// ClientInfoFromRequest collects the identifying headers of an upgrade request.
func ClientInfoFromRequest(r *http.Request) ClientInfo {
	return ClientInfo{
		DeviceID:  r.Header.Get("X-Device-Id"),
		IP:        IPFromRequest(r),
		RequestID: r.Header.Get("X-Request-Id"),
		UserAgent: r.UserAgent(),
	}
}

// IPFromRequest prefers the first X-Forwarded-For hop over the socket address.
func IPFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
