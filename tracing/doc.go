// Package tracing is a thin wrapper around OpenTelemetry so that the rest of
// the code-base can start and end spans without importing the upstream
// packages directly. Without an Init call spans are no-ops.
package tracing
