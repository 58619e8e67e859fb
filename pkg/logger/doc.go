// Package logger builds the process *slog.Logger.
//
// New applies options over JSON-at-info defaults. WithEnvironment picks
// per-stage defaults and WithContextExtractors registers functions that copy
// request-scoped values (request id, client ip, tenant id, route family) from
// the context into every record:
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "platform"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(ctx, "business not found", logger.Host(host))
//
// The attribute helpers keep keys consistent across packages.
package logger
