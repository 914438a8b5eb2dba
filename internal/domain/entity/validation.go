package entity

import (
	"fmt"
	"net"
	"net/url"
)

// maxURLLength bounds feed and article URLs.
const maxURLLength = 2048

// ValidateURL checks that rawURL is a well-formed http(s) URL with a host.
// Hosts given as private or loopback IP literals are rejected; name
// resolution is left to the fetchers, which re-check the resolved address.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	// HTTPまたはHTTPSスキームのみ許可
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	if ip := net.ParseIP(parsedURL.Hostname()); ip != nil && IsPrivateIP(ip) {
		return &ValidationError{
			Field:   "url",
			Message: "url cannot point to private network",
		}
	}

	return nil
}

// IsPrivateIP reports whether ip is loopback, link-local, unspecified or in a
// private range (including the cloud metadata address 169.254.169.254).
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	return ip.IsPrivate()
}
