package httpserver

import (
	"log/slog"
	"net"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

// WithAddr sets the listen address. Empty keeps the default.
func WithAddr(addr string) Option {
	return func(c *config) {
		if addr != "" {
			c.addr = addr
		}
	}
}

// WithTimeouts sets read, write and idle timeouts. Zero values are left unset.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(c *config) {
		c.readTimeout = read
		c.writeTimeout = write
		c.idleTimeout = idle
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// WithLogger sets the server lifecycle logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithListenHook registers fn to run with the bound address once the server listens.
func WithListenHook(fn func(addr net.Addr)) Option {
	return func(c *config) {
		if fn != nil {
			c.onListen = append(c.onListen, fn)
		}
	}
}
