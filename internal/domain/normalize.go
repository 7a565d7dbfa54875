package domain

import (
	"net"
	"net/url"
	"strings"
)

// NormalizeDomain turns a cell from the input file into a bare host name.
// URLs are reduced to their host; a leading "www.", a port and any path are
// dropped, with or without a scheme.
func NormalizeDomain(raw string) Domain {
	s := strings.ReplaceAll(raw, "\u00a0", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Hostname()
		}
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimPrefix(s, "www.")
	return Domain(strings.TrimSuffix(s, "."))
}
