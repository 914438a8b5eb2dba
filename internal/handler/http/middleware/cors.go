// Package middleware holds the cross-origin policy of the portal API.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgconfig "rss-portal/pkg/config"
)

// DevOrigin is always allowed unless CORS_ALLOWED_ORIGINS overrides the list.
const DevOrigin = "http://localhost:3000"

// CORSConfig is the cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
	Logger           *slog.Logger
}

// DefaultCORSConfig allows the site and the local dev server to GET and POST
// with credentials.
func DefaultCORSConfig(siteURL string) CORSConfig {
	origins := []string{DevOrigin}
	if siteURL != "" {
		origins = append([]string{siteURL}, origins...)
	}
	return CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// LoadCORSConfig reads SITE_URL, CORS_ALLOWED_ORIGINS and CORS_MAX_AGE.
func LoadCORSConfig() (CORSConfig, error) {
	cfg := DefaultCORSConfig(strings.TrimRight(pkgconfig.GetEnvString("SITE_URL", ""), "/"))
	cfg.AllowedOrigins = pkgconfig.GetEnvStringList("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.MaxAge = pkgconfig.GetEnvInt("CORS_MAX_AGE", cfg.MaxAge)
	if err := cfg.Validate(); err != nil {
		return CORSConfig{}, fmt.Errorf("invalid CORS configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that every origin is a bare scheme://host[:port].
func (c CORSConfig) Validate() error {
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}
	for _, origin := range c.AllowedOrigins {
		u, err := url.Parse(origin)
		if err != nil {
			return fmt.Errorf("invalid origin %q: %w", origin, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("origin must use http or https: %q", origin)
		}
		if u.Host == "" || (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			return fmt.Errorf("origin must be scheme://host[:port]: %q", origin)
		}
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("max age must be non-negative: %d", c.MaxAge)
	}
	return nil
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// CORS answers preflight requests from allowed origins with 204 and tags
// their actual requests. Requests from other origins pass through without
// CORS headers, so the browser blocks the response.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[normalizeOrigin(o)] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")

			if _, ok := allowed[normalizeOrigin(origin)]; !ok {
				logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			// credentials を許可するためワイルドカードではなくオリジンを返す
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
