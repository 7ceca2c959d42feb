package task

import "time"

// Promoted holds the metadata fields that the normalizer lifts out of a
// free-form payload into first-class columns. Everything else stays in the
// task residual Meta map.
type Promoted struct {
	ApprovalFeedback string     `json:"approvalFeedback,omitempty"`
	ReviewerNotes    string     `json:"reviewerNotes,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
}

// Merge overlays the non-zero fields of src onto p. Existing values are only
// replaced when src carries a value, so a transition that supplies no
// reviewer notes keeps the notes recorded earlier.
func (p *Promoted) Merge(src *Promoted) {
	if src == nil {
		return
	}
	if src.ApprovalFeedback != "" {
		p.ApprovalFeedback = src.ApprovalFeedback
	}
	if src.ReviewerNotes != "" {
		p.ReviewerNotes = src.ReviewerNotes
	}
	if src.RejectionReason != "" {
		p.RejectionReason = src.RejectionReason
	}
	if src.ApprovedAt != nil {
		t := *src.ApprovedAt
		p.ApprovedAt = &t
	}
	if src.ApprovedBy != "" {
		p.ApprovedBy = src.ApprovedBy
	}
}

// Task represents a unit of machine-generated content tracked through the
// review lifecycle. A task is created in StatusDraft by the content generator
// and thereafter mutated only through the status change coordinator. Version
// is an optimistic token bumped on every committed transition.
type Task struct {
	ID     string                 `json:"id"`
	Status Status                 `json:"status"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
	Promoted
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	Version   int       `json:"version"`
}

// MergeMeta merges residual metadata into the task: new keys overwrite
// same-named old keys, other old keys are retained.
func (t *Task) MergeMeta(meta map[string]interface{}) {
	if len(meta) == 0 {
		return
	}
	if t.Meta == nil {
		t.Meta = make(map[string]interface{}, len(meta))
	}
	for k, v := range meta {
		t.Meta[k] = v
	}
}

// Clone creates a deep copy of the task so that the caller can mutate it
// without affecting the original instance. Only mutable collections are
// deep-copied.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Meta != nil {
		clone.Meta = make(map[string]interface{}, len(t.Meta))
		for k, v := range t.Meta {
			clone.Meta[k] = v
		}
	}
	if t.ApprovedAt != nil {
		at := *t.ApprovedAt
		clone.ApprovedAt = &at
	}
	return &clone
}
