package stomp

import (
	"net/url"
	"strings"
)

// PushEndpoint derives the WebSocket push URL and STOMP host header from
// the REST base URL: https→wss / http→ws, path forced to /ws, query and
// fragment stripped. When the base URL does not parse, falls back to a
// naive string substitution; the fallback is explicitly best-effort and
// never fails.
func PushEndpoint(base string) (endpoint, host string) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return fallbackEndpoint(base)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), u.Host
}

func fallbackEndpoint(base string) (string, string) {
	s := strings.TrimRight(base, "/")
	if strings.HasPrefix(s, "https") {
		s = "wss" + s[len("https"):]
	} else if strings.HasPrefix(s, "http") {
		s = "ws" + s[len("http"):]
	}
	host := s
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return s + "/ws", host
}
