// Package coordinator implements the status change coordinator: the single
// write path for task status. Every change runs the same sequence - load,
// policy check, metadata normalization, required-field validation, atomic
// commit of the task row plus one history entry - and either fully commits
// or fails with zero persisted side effects.
package coordinator
