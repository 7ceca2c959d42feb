// Package task defines the review task domain model: the closed status enum,
// the task entity with promoted metadata columns and residual metadata, and
// the immutable status history entry.
package task
