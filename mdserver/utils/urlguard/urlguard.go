// Package urlguard validates outbound fetch targets before any network
// traffic happens. Every redirect hop goes through ValidateURL again so
// a public URL cannot bounce the server into internal address space.
package urlguard

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrBlocked    = errors.New("url blocked")
)

// Policy holds the two knobs the server exposes for outbound fetches.
type Policy struct {
	AllowLocalhost       bool
	AllowPrivateNetworks bool
}

// ValidateURL parses and policy-checks a URL. It resolves the hostname
// so DNS names pointing at internal addresses are caught too.
func ValidateURL(rawURL string, policy Policy) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if isLocalhostName(host) {
		if !policy.AllowLocalhost {
			return fmt.Errorf("%w: localhost access disabled", ErrBlocked)
		}
		return nil
	}

	ips, err := resolveHost(host)
	if err != nil {
		// unresolvable hosts fail later at fetch time with a clearer error
		return nil
	}
	for _, ip := range ips {
		if err := checkIP(ip, policy); err != nil {
			return err
		}
	}
	return nil
}

func isLocalhostName(host string) bool {
	host = strings.ToLower(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

func resolveHost(host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}
	return net.LookupIP(host)
}

func checkIP(ip net.IP, policy Policy) error {
	if ip.IsLoopback() {
		if !policy.AllowLocalhost {
			return fmt.Errorf("%w: loopback address %s", ErrBlocked, ip)
		}
		return nil
	}
	if ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		if !policy.AllowPrivateNetworks {
			return fmt.Errorf("%w: private address %s", ErrBlocked, ip)
		}
	}
	return nil
}
