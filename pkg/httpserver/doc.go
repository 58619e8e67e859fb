// Package httpserver runs the platform's HTTP listener with graceful shutdown
// and provides the liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	err := srv.Run(ctx, handler)
//
// Run returns nil after a clean shutdown triggered by ctx, SIGINT or SIGTERM.
// Startup failures wrap ErrStart and drain failures wrap ErrShutdown.
package httpserver
