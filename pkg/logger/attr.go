package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil err yields an empty Attr, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Host records a request host.
func Host(host string) slog.Attr {
	return slog.String("host", host)
}

// TenantID records the tenant identifier. A nil id yields an empty Attr.
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// Strategy records the resolution strategy that matched.
func Strategy(name string) slog.Attr {
	return slog.String("strategy", name)
}

// Component records the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
