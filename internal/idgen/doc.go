// Package idgen generates unique identifiers for history entries and queue
// messages.
package idgen
