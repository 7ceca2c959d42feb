package normalizer

import (
	"strings"
	"time"

	"github.com/viant/toolbox"

	"github.com/revuhq/revu/internal/clock"
	"github.com/revuhq/revu/model/task"
)

// Recognized payload keys. Synonyms map onto the same canonical field: the
// older client generation sends "feedback" and "timestamp" where the newer
// one sends "approval_feedback" and "approved_at".
const (
	KeyAction           = "action"
	KeyApprovalFeedback = "approval_feedback"
	KeyReviewerNotes    = "reviewer_notes"
	KeyRejectionReason  = "rejection_reason"
	KeyApprovedAt       = "approved_at"
	KeyApprovedBy       = "approved_by"
	KeyTimestamp        = "timestamp"
	KeyFeedback         = "feedback"
)

// Output holds the promoted record plus the residual metadata that passes
// through untouched. Residual keys never overwrite a promoted column.
type Output struct {
	Promoted task.Promoted
	Residual map[string]interface{}
}

// Option customises the service.
type Option func(*Service)

// WithClock overrides the time source used for the approved_at default.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service normalizes free-form metadata payloads against a target status.
type Service struct {
	now func() time.Time
}

// New creates a normalizer service.
func New(options ...Option) *Service {
	ret := &Service{now: clock.Now}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Normalize extracts the recognized keys of payload into a structured record
// and leaves everything else in the residual map. When the canonical key and
// its synonym are both present with non-empty values the canonical key wins.
// approved_at defaults to the current time when the target status is
// approved and no explicit value was given. The "action" marker emitted by
// shorthand clients is consumed and never stored.
func (s *Service) Normalize(payload map[string]interface{}, target task.Status) *Output {
	out := &Output{Residual: make(map[string]interface{})}

	var approvalFeedback, feedbackSynonym string
	var approvedAt, timestampSynonym *time.Time

	for key, value := range payload {
		switch key {
		case KeyAction:
			// shorthand marker, already reflected in the target status
		case KeyApprovalFeedback:
			approvalFeedback = asString(value)
		case KeyFeedback:
			feedbackSynonym = asString(value)
		case KeyReviewerNotes:
			out.Promoted.ReviewerNotes = asString(value)
		case KeyRejectionReason:
			out.Promoted.RejectionReason = asString(value)
		case KeyApprovedBy:
			out.Promoted.ApprovedBy = asString(value)
		case KeyApprovedAt:
			if at := asTime(value); at != nil {
				approvedAt = at
			} else if value != nil {
				out.Residual[key] = value
			}
		case KeyTimestamp:
			if at := asTime(value); at != nil {
				timestampSynonym = at
			} else if value != nil {
				out.Residual[key] = value
			}
		default:
			out.Residual[key] = value
		}
	}

	if approvalFeedback == "" {
		approvalFeedback = feedbackSynonym
	}
	out.Promoted.ApprovalFeedback = approvalFeedback

	if approvedAt == nil {
		approvedAt = timestampSynonym
	}
	if approvedAt == nil && target == task.StatusApproved {
		now := s.now()
		approvedAt = &now
	}
	out.Promoted.ApprovedAt = approvedAt
	return out
}

func asString(value interface{}) string {
	if value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(toolbox.AsString(value))
}

func asTime(value interface{}) *time.Time {
	switch actual := value.(type) {
	case nil:
		return nil
	case time.Time:
		t := actual
		return &t
	case *time.Time:
		if actual == nil {
			return nil
		}
		t := *actual
		return &t
	default:
		at, err := toolbox.ToTime(value, time.RFC3339)
		if err != nil {
			return nil
		}
		return at
	}
}
