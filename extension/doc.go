// Package extension provides run-time registries for edge services and their
// Go IO types, so that untyped callers can resolve a service method and the
// concrete input type it expects.
package extension
