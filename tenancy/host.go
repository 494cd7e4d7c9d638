package tenancy

import (
	"net"
	"strings"
)

// SubdomainFromHost extracts the school subdomain from an HTTP Host value.
// The port is stripped (including bracketed IPv6), the host is lowercased,
// and the first label is taken as the subdomain. It returns ok=false when the
// host carries no school: IP literals, localhost, hosts with fewer than three
// labels, the bare base domain, and www.
func SubdomainFromHost(host, baseDomain string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(stripPort(host)))
	if h == "" || net.ParseIP(h) != nil {
		return "", false
	}
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return "", false
	}
	if baseDomain != "" && h == baseDomain {
		// Apex domain is the marketing site, not a school.
		return "", false
	}
	labels := strings.Split(h, ".")
	if len(labels) < 3 {
		return "", false
	}
	sub := labels[0]
	if sub == "" || sub == "www" {
		return "", false
	}
	return sub, true
}

// stripPort removes an optional :port suffix from a Host value, tolerating
// bracketed IPv6 literals with or without a port.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

// isLoopbackHost reports whether the Host value points at the local machine.
// Used to gate the development fallback strategy.
func isLoopbackHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(stripPort(host)))
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
