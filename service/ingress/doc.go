// Package ingress adapts the two request generations accepted at the edge -
// the generic setStatus shape and the approve/reject shorthand - into a single
// coordinator call. Shorthand methods only build the equivalent payload and
// delegate; no transition rule lives here.
package ingress
