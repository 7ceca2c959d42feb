package task

import "time"

// History is an immutable audit record of a single status transition. Entries
// are linked to a task by ID only; they outlive any in-memory task view and
// are never mutated or deleted.
type History struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Reason    string    `json:"reason,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a copy of the entry.
func (h *History) Clone() *History {
	if h == nil {
		return nil
	}
	clone := *h
	return &clone
}
