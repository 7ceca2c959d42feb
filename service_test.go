package revu_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revuhq/revu"
	mtask "github.com/revuhq/revu/model/task"
	"github.com/revuhq/revu/service/coordinator"
	"github.com/revuhq/revu/service/ingress"
)

func newService(t *testing.T, status mtask.Status) *revu.Service {
	t.Helper()
	srv, err := revu.New()
	require.NoError(t, err)
	require.NoError(t, srv.TaskStore().Save(context.Background(), &mtask.Task{
		ID:        "t1",
		Status:    status,
		CreatedAt: time.Now(),
		Version:   1,
	}))
	return srv
}

func TestServiceApproval(t *testing.T) {
	ctx := context.Background()
	srv := newService(t, mtask.StatusAwaitingApproval)

	output := &ingress.Output{}
	err := srv.Adapter().Approve(ctx, &ingress.ApproveInput{
		TaskID:   "t1",
		Actor:    "alice",
		Feedback: "Looks good, fix typo",
	}, output)
	require.NoError(t, err)
	assert.Equal(t, mtask.StatusApproved, output.Task.Status)
	assert.Equal(t, "Looks good, fix typo", output.Task.ApprovalFeedback)
	assert.NotNil(t, output.Task.ApprovedAt)

	history, err := srv.Coordinator().History(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, mtask.StatusAwaitingApproval, history[0].From)
	assert.Equal(t, mtask.StatusApproved, history[0].To)

	// the committed transition was fanned out on the event queue
	message, err := srv.Events().Consume(ctx)
	require.NoError(t, err)
	event := message.T()
	assert.Equal(t, coordinator.TopicStatusChanged, event.Topic)
	assert.Equal(t, mtask.StatusApproved, event.Task.Status)
	require.NoError(t, message.Ack())
}

func TestServiceApproveFromDraft(t *testing.T) {
	ctx := context.Background()
	srv := newService(t, mtask.StatusDraft)

	err := srv.Adapter().Approve(ctx, &ingress.ApproveInput{
		TaskID:   "t1",
		Feedback: "fine",
	}, &ingress.Output{})
	require.Error(t, err)
	assert.True(t, coordinator.IsKind(err, coordinator.KindInvalidTransition))

	stored, err := srv.TaskStore().Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, mtask.StatusDraft, stored.Status)
}

func TestServiceRejectWithoutReason(t *testing.T) {
	ctx := context.Background()
	srv := newService(t, mtask.StatusAwaitingApproval)

	err := srv.Adapter().Reject(ctx, &ingress.RejectInput{TaskID: "t1"}, &ingress.Output{})
	require.Error(t, err)
	assert.True(t, coordinator.IsKind(err, coordinator.KindMissingField))

	stored, err := srv.TaskStore().Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, mtask.StatusAwaitingApproval, stored.Status)
	history, err := srv.Coordinator().History(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestServiceRepeatedApproval(t *testing.T) {
	ctx := context.Background()
	srv := newService(t, mtask.StatusAwaitingApproval)

	output := &ingress.Output{}
	require.NoError(t, srv.Adapter().Approve(ctx, &ingress.ApproveInput{
		TaskID:   "t1",
		Feedback: "fine",
	}, output))
	require.True(t, output.Changed)

	again := &ingress.Output{}
	require.NoError(t, srv.Adapter().Approve(ctx, &ingress.ApproveInput{
		TaskID:   "t1",
		Feedback: "fine",
	}, again))
	assert.False(t, again.Changed)

	history, err := srv.Coordinator().History(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestServiceDispatchThroughRegistry(t *testing.T) {
	ctx := context.Background()
	srv := newService(t, mtask.StatusPendingReview)

	registered := srv.Actions().Lookup("task")
	require.NotNil(t, registered)
	signature := registered.Methods().Lookup(ingress.MethodSetStatus)
	require.NotNil(t, signature)

	output, err := srv.Adapter().Dispatch(ctx, ingress.MethodSetStatus, map[string]interface{}{
		"taskId": "t1",
		"status": "awaiting_approval",
		"actor":  "reviewer",
	})
	require.NoError(t, err)
	assert.Equal(t, mtask.StatusAwaitingApproval, output.Task.Status)
}

func TestServiceFsStore(t *testing.T) {
	ctx := context.Background()
	config := revu.DefaultConfig()
	config.Store.Vendor = revu.StoreVendorFs
	config.Store.BaseURL = t.TempDir()

	srv, err := revu.New(revu.WithConfig(config))
	require.NoError(t, err)
	require.NoError(t, srv.TaskStore().Save(ctx, &mtask.Task{
		ID:        "t1",
		Status:    mtask.StatusAwaitingApproval,
		CreatedAt: time.Now(),
		Version:   1,
	}))

	output := &ingress.Output{}
	require.NoError(t, srv.Adapter().Approve(ctx, &ingress.ApproveInput{
		TaskID:   "t1",
		Feedback: "fine",
	}, output))
	assert.Equal(t, mtask.StatusApproved, output.Task.Status)

	history, err := srv.Coordinator().History(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestConfigValidate(t *testing.T) {
	config := revu.DefaultConfig()
	assert.NoError(t, config.Validate())

	config.Store.Vendor = revu.StoreVendorFs
	assert.Error(t, config.Validate(), "fs vendor requires baseURL")

	config.Store.Vendor = "bolt"
	assert.Error(t, config.Validate())
}
