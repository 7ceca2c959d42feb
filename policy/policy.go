package policy

import (
	"sort"

	"github.com/revuhq/revu/model/task"
)

// Canonical names of fields an edge may require. The coordinator checks them
// against the normalized record after metadata promotion.
const (
	FieldApprovalFeedback = "approval_feedback"
	FieldRejectionReason  = "rejection_reason"
)

// Denial reasons surfaced through Decision.Reason.
const (
	ReasonUnknownStatus = "unknown status"
	ReasonNoEdge        = "no such edge"
	ReasonTerminal      = "already terminal"
)

// Edge describes one permitted directed transition together with the fields
// it requires.
type Edge struct {
	From     task.Status
	To       task.Status
	Requires []string
}

// Decision is the outcome of evaluating a requested transition.
type Decision struct {
	Allowed  bool
	Reason   string
	Requires []string
}

type edgeKey struct {
	from, to task.Status
}

// Policy is a table of permitted transitions keyed by (from, to).
type Policy struct {
	edges map[edgeKey]*Edge
}

// New returns the default review lifecycle policy. The failed state keeps an
// explicit retry edge back to pending_review.
func New() *Policy {
	return NewWithEdges([]Edge{
		{From: task.StatusDraft, To: task.StatusGenerating},
		{From: task.StatusDraft, To: task.StatusPendingReview},
		{From: task.StatusDraft, To: task.StatusArchived},
		{From: task.StatusGenerating, To: task.StatusPendingReview},
		{From: task.StatusGenerating, To: task.StatusFailed},
		{From: task.StatusPendingReview, To: task.StatusAwaitingApproval},
		{From: task.StatusPendingReview, To: task.StatusRejected, Requires: []string{FieldRejectionReason}},
		{From: task.StatusPendingReview, To: task.StatusArchived},
		{From: task.StatusAwaitingApproval, To: task.StatusApproved, Requires: []string{FieldApprovalFeedback}},
		{From: task.StatusAwaitingApproval, To: task.StatusRejected, Requires: []string{FieldRejectionReason}},
		{From: task.StatusApproved, To: task.StatusPublished},
		{From: task.StatusApproved, To: task.StatusArchived},
		{From: task.StatusRejected, To: task.StatusPendingReview},
		{From: task.StatusRejected, To: task.StatusArchived},
		{From: task.StatusPublished, To: task.StatusArchived},
		{From: task.StatusFailed, To: task.StatusPendingReview},
		{From: task.StatusFailed, To: task.StatusArchived},
	})
}

// NewWithEdges builds a policy from a custom edge table.
func NewWithEdges(edges []Edge) *Policy {
	ret := &Policy{edges: make(map[edgeKey]*Edge, len(edges))}
	for i := range edges {
		edge := edges[i]
		ret.edges[edgeKey{from: edge.From, to: edge.To}] = &edge
	}
	return ret
}

// Evaluate decides whether a transition from current to requested is
// permitted. A self-transition is allowed so that the coordinator can treat
// it as an idempotent no-op rather than a distinct edge.
func (p *Policy) Evaluate(current, requested task.Status) Decision {
	if !requested.Known() {
		return Decision{Reason: ReasonUnknownStatus}
	}
	if current == requested {
		return Decision{Allowed: true}
	}
	if current.Terminal() {
		return Decision{Reason: ReasonTerminal}
	}
	edge, ok := p.edges[edgeKey{from: current, to: requested}]
	if !ok {
		return Decision{Reason: ReasonNoEdge}
	}
	return Decision{Allowed: true, Requires: append([]string(nil), edge.Requires...)}
}

// Edges returns a copy of the transition table sorted by (from, to) so that
// callers and tests can enumerate it deterministically.
func (p *Policy) Edges() []Edge {
	out := make([]Edge, 0, len(p.edges))
	for _, edge := range p.edges {
		e := *edge
		e.Requires = append([]string(nil), edge.Requires...)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
