// Package clientip determines the client address of a request behind the
// platform's proxies and makes it available to handlers and log records.
package clientip

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders is the proxy header precedence used when none is configured.
var DefaultHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// Config is the CLIENT_IP_* environment surface.
type Config struct {
	// Headers lists the proxy headers to trust, highest priority first.
	// Empty trusts none and uses the connection address.
	Headers []string `env:"CLIENT_IP_HEADERS" envSeparator:","`
}

// Extractor reads the client IP from trusted headers, falling back to RemoteAddr.
type Extractor struct {
	headers []string
}

// New creates an Extractor trusting headers in order.
func New(headers ...string) *Extractor {
	clean := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, http.CanonicalHeaderKey(h))
		}
	}
	return &Extractor{headers: clean}
}

// IP returns the normalized client IP, or "" when none is valid.
// For list headers such as X-Forwarded-For the first valid entry wins.
func (e *Extractor) IP(r *http.Request) string {
	for _, h := range e.headers {
		for v := range strings.SplitSeq(r.Header.Get(h), ",") {
			if ip := parseIP(v); ip != "" {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return parseIP(host)
	}
	return parseIP(r.RemoteAddr)
}

// Middleware stores the client IP in the request context.
func (e *Extractor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), e.IP(r))))
	})
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

type contextKey struct{}

// WithContext stores ip in ctx.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the client IP stored in ctx, or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// LoggerExtractor returns a logger.ContextExtractor that adds client_ip.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if ip := FromContext(ctx); ip != "" {
			return slog.String("client_ip", ip), true
		}
		return slog.Attr{}, false
	}
}
