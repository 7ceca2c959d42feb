package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/revuhq/revu/internal/clock"
	"github.com/revuhq/revu/internal/idgen"
	"github.com/revuhq/revu/model/task"
	"github.com/revuhq/revu/policy"
	"github.com/revuhq/revu/service/dao"
	dtask "github.com/revuhq/revu/service/dao/task"
	"github.com/revuhq/revu/service/messaging"
	"github.com/revuhq/revu/service/normalizer"
	"github.com/revuhq/revu/tracing"
)

// Config is the serialisable coordinator configuration.
type Config struct {
	// MaxCommitRetries bounds the transparent re-fetch/re-validate/re-commit
	// cycles performed on a version conflict before the conflict surfaces.
	MaxCommitRetries int `json:"maxCommitRetries" yaml:"maxCommitRetries"`
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{MaxCommitRetries: 3}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c.MaxCommitRetries < 0 {
		return fmt.Errorf("coordinator.maxCommitRetries must be >= 0")
	}
	return nil
}

// Request is the canonical status change request both ingress generations
// translate into.
type Request struct {
	TaskID   string                 `json:"taskId"`
	Status   task.Status            `json:"status"`
	Actor    string                 `json:"actor,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Outcome is the result of a successful status change. Task is a private
// copy the caller may mutate freely.
type Outcome struct {
	Task    *task.Task `json:"task"`
	Message string     `json:"message"`
	Changed bool       `json:"changed"`
}

// Service coordinates status changes: validate, normalize, persist and log
// as one atomic logical operation against the task store.
type Service struct {
	taskDao    dtask.Service
	policy     *policy.Policy
	normalizer *normalizer.Service
	events     messaging.Queue[Event]
	config     Config
	now        func() time.Time
}

// New creates a coordinator backed by the supplied task store.
func New(taskDao dtask.Service, options ...Option) *Service {
	ret := &Service{
		taskDao: taskDao,
		config:  DefaultConfig(),
		now:     clock.Now,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.policy == nil {
		ret.policy = policy.New()
	}
	if ret.normalizer == nil {
		ret.normalizer = normalizer.New(normalizer.WithClock(ret.now))
	}
	return ret
}

// ChangeStatus applies one status transition. It either fully commits - task
// row update plus exactly one history entry - or fails with no persisted side
// effect. A request whose target equals the current status is an idempotent
// no-op success: nothing is written and no history entry is appended, which
// also absorbs duplicate deliveries after a client-side timeout. Version
// conflicts with concurrent writers are retried transparently a bounded
// number of times.
func (s *Service) ChangeStatus(ctx context.Context, request *Request) (outcome *Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "coordinator.changeStatus", "INTERNAL")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	if request == nil || request.TaskID == "" {
		err = NewNotFound("")
		return nil, err
	}
	span.WithAttributes(map[string]string{
		"task.id":     request.TaskID,
		"task.status": string(request.Status),
	})

	for attempt := 0; ; attempt++ {
		outcome, err = s.attempt(ctx, request)
		if err == nil {
			return outcome, nil
		}
		if !IsKind(err, KindConcurrentModification) || attempt >= s.config.MaxCommitRetries {
			return nil, err
		}
	}
}

// History returns the audit trail of a task in append order.
func (s *Service) History(ctx context.Context, taskID string) ([]*task.History, error) {
	entries, err := s.taskDao.History(ctx, taskID)
	if err != nil {
		return nil, NewPersistenceFailure(err)
	}
	return entries, nil
}

func (s *Service) attempt(ctx context.Context, request *Request) (*Outcome, error) {
	current, err := s.taskDao.Load(ctx, request.TaskID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) || errors.Is(err, dao.ErrInvalidID) {
			return nil, NewNotFound(request.TaskID)
		}
		return nil, NewPersistenceFailure(err)
	}

	decision := s.policy.Evaluate(current.Status, request.Status)
	if !decision.Allowed {
		return nil, NewInvalidTransition(current.Status, request.Status, decision.Reason)
	}

	if current.Status == request.Status {
		return &Outcome{
			Task:    current,
			Message: fmt.Sprintf("Status unchanged: %s", current.Status),
		}, nil
	}

	normalized := s.normalizer.Normalize(request.Metadata, request.Status)
	for _, field := range decision.Requires {
		if !hasField(&normalized.Promoted, field) {
			return nil, NewMissingField(field, current.Status, request.Status)
		}
	}

	now := s.now()
	updated := current.Clone()
	updated.Status = request.Status
	updated.Promoted.Merge(&normalized.Promoted)
	updated.MergeMeta(normalized.Residual)
	updated.UpdatedAt = now
	updated.UpdatedBy = request.Actor
	updated.Version = current.Version + 1

	entry := &task.History{
		ID:        idgen.New(),
		TaskID:    current.ID,
		From:      current.Status,
		To:        request.Status,
		Reason:    request.Reason,
		Actor:     request.Actor,
		CreatedAt: now,
	}

	if err := s.taskDao.Commit(ctx, updated, entry); err != nil {
		switch {
		case errors.Is(err, dao.ErrVersionConflict):
			return nil, NewConcurrentModification(current.ID, s.config.MaxCommitRetries+1, err)
		case errors.Is(err, dao.ErrNotFound):
			return nil, NewNotFound(current.ID)
		default:
			return nil, NewPersistenceFailure(err)
		}
	}

	s.publish(ctx, updated, entry)

	return &Outcome{
		Task:    updated,
		Message: fmt.Sprintf("Status changed: %s → %s", entry.From, entry.To),
		Changed: true,
	}, nil
}

// publish fans out the committed transition; delivery is best-effort and must
// never fail the already committed call.
func (s *Service) publish(ctx context.Context, updated *task.Task, entry *task.History) {
	if s.events == nil {
		return
	}
	event := &Event{Topic: TopicStatusChanged, Task: updated.Clone(), Entry: entry.Clone()}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("failed to publish status change event for task %v: %v", updated.ID, err)
	}
}

// hasField resolves a policy field name against the normalized record.
func hasField(promoted *task.Promoted, field string) bool {
	switch field {
	case policy.FieldApprovalFeedback:
		return promoted.ApprovalFeedback != ""
	case policy.FieldRejectionReason:
		return promoted.RejectionReason != ""
	}
	return false
}
