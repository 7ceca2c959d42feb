package coordinator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mtask "github.com/revuhq/revu/model/task"
	"github.com/revuhq/revu/service/coordinator"
	"github.com/revuhq/revu/service/dao"
	dtask "github.com/revuhq/revu/service/dao/task"
	"github.com/revuhq/revu/service/dao/task/memory"
	qmem "github.com/revuhq/revu/service/messaging/memory"
)

func newStore(t *testing.T, id string, status mtask.Status) *memory.Service {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Save(context.Background(), &mtask.Task{
		ID:        id,
		Status:    status,
		Meta:      map[string]interface{}{"source": "generator"},
		CreatedAt: time.Now(),
		Version:   1,
	}))
	return store
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusAwaitingApproval)
	svc := coordinator.New(store)

	outcome, err := svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID: "t1",
		Status: mtask.StatusApproved,
		Actor:  "alice",
		Reason: "manual review",
		Metadata: map[string]interface{}{
			"feedback": "Looks good, fix typo",
			"uiHint":   "card",
		},
	})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, "Status changed: awaiting_approval → approved", outcome.Message)
	assert.Equal(t, mtask.StatusApproved, outcome.Task.Status)
	assert.Equal(t, "Looks good, fix typo", outcome.Task.ApprovalFeedback)
	assert.NotNil(t, outcome.Task.ApprovedAt)
	assert.Equal(t, "alice", outcome.Task.UpdatedBy)
	// promoted synonym never lands in residual metadata
	assert.NotContains(t, outcome.Task.Meta, "feedback")
	assert.Equal(t, "card", outcome.Task.Meta["uiHint"])
	assert.Equal(t, "generator", outcome.Task.Meta["source"])

	history, err := svc.History(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, mtask.StatusAwaitingApproval, history[0].From)
	assert.Equal(t, mtask.StatusApproved, history[0].To)
	assert.Equal(t, "alice", history[0].Actor)
	assert.Equal(t, "manual review", history[0].Reason)
}

func TestChangeStatusInvalidTransition(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusDraft)
	svc := coordinator.New(store)

	before, err := store.Load(ctx, "t1")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID:   "t1",
		Status:   mtask.StatusApproved,
		Metadata: map[string]interface{}{"feedback": "nope"},
	})
	require.Error(t, err)
	assert.True(t, coordinator.IsKind(err, coordinator.KindInvalidTransition))

	// zero persisted side effects
	after, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, before, after)
	history, err := svc.History(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChangeStatusMissingField(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusAwaitingApproval)
	svc := coordinator.New(store)

	_, err := svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID: "t1",
		Status: mtask.StatusRejected,
	})
	require.Error(t, err)
	assert.True(t, coordinator.IsKind(err, coordinator.KindMissingField))
	assert.Contains(t, err.Error(), "rejection_reason")

	after, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, mtask.StatusAwaitingApproval, after.Status)
	history, err := svc.History(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChangeStatusNotFound(t *testing.T) {
	svc := coordinator.New(memory.New())

	_, err := svc.ChangeStatus(context.Background(), &coordinator.Request{
		TaskID: "missing",
		Status: mtask.StatusApproved,
	})
	require.Error(t, err)
	assert.True(t, coordinator.IsKind(err, coordinator.KindNotFound))
}

func TestChangeStatusIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusAwaitingApproval)
	svc := coordinator.New(store)

	first, err := svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID:   "t1",
		Status:   mtask.StatusApproved,
		Actor:    "alice",
		Metadata: map[string]interface{}{"feedback": "fine"},
	})
	require.NoError(t, err)
	require.True(t, first.Changed)

	// re-delivery of the same request collapses to a no-op success
	second, err := svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID:   "t1",
		Status:   mtask.StatusApproved,
		Actor:    "alice",
		Metadata: map[string]interface{}{"feedback": "fine"},
	})
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, "Status unchanged: approved", second.Message)

	history, err := svc.History(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestChangeStatusConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusAwaitingApproval)
	svc := coordinator.New(store)

	requests := []*coordinator.Request{
		{
			TaskID:   "t1",
			Status:   mtask.StatusApproved,
			Actor:    "alice",
			Metadata: map[string]interface{}{"feedback": "ok"},
		},
		{
			TaskID:   "t1",
			Status:   mtask.StatusRejected,
			Actor:    "bob",
			Metadata: map[string]interface{}{"rejection_reason": "not ok"},
		},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(requests))
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ChangeStatus(ctx, requests[i])
		}(i)
	}
	wg.Wait()

	// exactly one writer wins, the loser re-validates from the new status and
	// fails with an invalid transition
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, coordinator.IsKind(err, coordinator.KindInvalidTransition), "%v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	final, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Contains(t, []mtask.Status{mtask.StatusApproved, mtask.StatusRejected}, final.Status)

	history, err := svc.History(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, mtask.StatusAwaitingApproval, history[0].From)
	assert.Equal(t, final.Status, history[0].To)
}

// conflictOnce wraps a task store and injects a single version conflict on
// the first commit to exercise the transparent retry path.
type conflictOnce struct {
	dtask.Service
	mu       sync.Mutex
	injected bool
}

func (c *conflictOnce) Commit(ctx context.Context, t *mtask.Task, entry *mtask.History) error {
	c.mu.Lock()
	inject := !c.injected
	c.injected = true
	c.mu.Unlock()
	if inject {
		return dao.ErrVersionConflict
	}
	return c.Service.Commit(ctx, t, entry)
}

func TestChangeStatusRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusAwaitingApproval)
	svc := coordinator.New(&conflictOnce{Service: store})

	outcome, err := svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID:   "t1",
		Status:   mtask.StatusApproved,
		Actor:    "alice",
		Metadata: map[string]interface{}{"feedback": "fine"},
	})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)

	history, err := svc.History(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestChangeStatusSurfacesConflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusAwaitingApproval)
	always := &conflictAlways{Service: store}
	svc := coordinator.New(always, coordinator.WithConfig(coordinator.Config{MaxCommitRetries: 2}))

	_, err := svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID:   "t1",
		Status:   mtask.StatusApproved,
		Metadata: map[string]interface{}{"feedback": "fine"},
	})
	require.Error(t, err)
	assert.True(t, coordinator.IsKind(err, coordinator.KindConcurrentModification))
	assert.Equal(t, 3, always.commits, "initial attempt plus two retries")
}

type conflictAlways struct {
	dtask.Service
	commits int
}

func (c *conflictAlways) Commit(context.Context, *mtask.Task, *mtask.History) error {
	c.commits++
	return dao.ErrVersionConflict
}

func TestChangeStatusPublishesEvent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "t1", mtask.StatusPendingReview)
	queue := qmem.NewQueue[coordinator.Event](qmem.DefaultConfig())
	svc := coordinator.New(store, coordinator.WithEventQueue(queue))

	_, err := svc.ChangeStatus(ctx, &coordinator.Request{
		TaskID: "t1",
		Status: mtask.StatusAwaitingApproval,
		Actor:  "reviewer",
	})
	require.NoError(t, err)

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	event := message.T()
	assert.Equal(t, coordinator.TopicStatusChanged, event.Topic)
	assert.Equal(t, mtask.StatusAwaitingApproval, event.Task.Status)
	assert.Equal(t, mtask.StatusPendingReview, event.Entry.From)
	require.NoError(t, message.Ack())
}
