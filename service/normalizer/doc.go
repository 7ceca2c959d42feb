// Package normalizer promotes loosely-typed request metadata into the
// structured task fields. It is a pure transformation: no I/O, no required
// field validation - the coordinator checks required fields against the
// transition policy afterwards.
package normalizer
