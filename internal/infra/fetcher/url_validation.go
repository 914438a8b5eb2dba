package fetcher

import (
	"fmt"
	"net"
	"net/url"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/usecase/fetch"
)

// validateURL checks the scheme and host of urlStr and, when denyPrivate is
// set, that no resolved address is private.
func (f *ReadabilityFetcher) validateURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", fetch.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", fetch.ErrInvalidURL, u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", fetch.ErrInvalidURL)
	}
	if !f.config.DenyPrivateIPs {
		return nil
	}

	var ips []net.IP
	if ip := net.ParseIP(hostname); ip != nil {
		ips = []net.IP{ip}
	} else {
		ips, err = f.lookupIP(hostname)
		if err != nil {
			return fmt.Errorf("%w: DNS lookup failed for %s: %v", fetch.ErrInvalidURL, hostname, err)
		}
	}
	for _, ip := range ips {
		if entity.IsPrivateIP(ip) {
			return fmt.Errorf("%w: hostname '%s' resolves to private IP %s", fetch.ErrPrivateIP, hostname, ip)
		}
	}
	return nil
}
