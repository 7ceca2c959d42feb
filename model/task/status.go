package task

// Status represents the review lifecycle state of a task. The set is closed;
// persistence and the coordinator reject values outside of it.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusGenerating       Status = "generating"
	StatusPendingReview    Status = "pending_review"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusPublished        Status = "published"
	StatusFailed           Status = "failed"
	StatusArchived         Status = "archived"
)

// AllStatuses returns every member of the closed status set; used by the
// policy table and exhaustive tests.
func AllStatuses() []Status {
	return []Status{
		StatusDraft,
		StatusGenerating,
		StatusPendingReview,
		StatusAwaitingApproval,
		StatusApproved,
		StatusRejected,
		StatusPublished,
		StatusFailed,
		StatusArchived,
	}
}

// Known reports whether s is a member of the closed status set.
func (s Status) Known() bool {
	switch s {
	case StatusDraft, StatusGenerating, StatusPendingReview, StatusAwaitingApproval,
		StatusApproved, StatusRejected, StatusPublished, StatusFailed, StatusArchived:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing transitions. Archival is a
// status value, not a delete; it is the only terminal state.
func (s Status) Terminal() bool {
	return s == StatusArchived
}
