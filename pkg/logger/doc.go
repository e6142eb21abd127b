// Package logger builds the service's slog.Logger.
//
// New applies functional options on top of production defaults (JSON, info
// level, stdout). WithEnvironment switches to readable text output in
// development. Context extractors registered with WithContextExtractors run
// on every record, which is how the request id and the authenticated caller
// end up in request logs without passing loggers around.
//
// The attr helpers (Error, CustomerID, SubscriptionID, Plan, Status, ...)
// keep attribute keys consistent across packages.
package logger
