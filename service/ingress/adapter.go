package ingress

import (
	"context"
	"reflect"

	"github.com/viant/structology/conv"

	"github.com/revuhq/revu/model/task"
	"github.com/revuhq/revu/model/types"
	"github.com/revuhq/revu/service/coordinator"
	"github.com/revuhq/revu/service/normalizer"
)

// Name is the service name the adapter registers under.
const Name = "task"

// Method names exposed through the registry.
const (
	MethodSetStatus = "setStatus"
	MethodApprove   = "approve"
	MethodReject    = "reject"
)

// SetStatusInput is the generic request shape: target status plus a free-form
// metadata payload.
type SetStatusInput struct {
	TaskID   string                 `json:"taskId"`
	Status   string                 `json:"status"`
	Actor    string                 `json:"actor,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ApproveInput is the shorthand approval request.
type ApproveInput struct {
	TaskID   string `json:"taskId"`
	Actor    string `json:"actor,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// RejectInput is the shorthand rejection request.
type RejectInput struct {
	TaskID string `json:"taskId"`
	Actor  string `json:"actor,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Output is shared by all methods.
type Output struct {
	Task    *task.Task `json:"task"`
	Message string     `json:"message"`
	Changed bool       `json:"changed"`
}

// Adapter translates edge requests into coordinator calls.
type Adapter struct {
	coordinator *coordinator.Service
	converter   *conv.Converter
}

// New creates an ingress adapter for the given coordinator.
func New(coordinatorSvc *coordinator.Service) *Adapter {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	return &Adapter{
		coordinator: coordinatorSvc,
		converter:   conv.NewConverter(options),
	}
}

// SetStatus applies the generic status change request.
func (a *Adapter) SetStatus(ctx context.Context, input *SetStatusInput, output *Output) error {
	outcome, err := a.coordinator.ChangeStatus(ctx, &coordinator.Request{
		TaskID:   input.TaskID,
		Status:   task.Status(input.Status),
		Actor:    input.Actor,
		Reason:   input.Reason,
		Metadata: input.Metadata,
	})
	if err != nil {
		return err
	}
	output.Task = outcome.Task
	output.Message = outcome.Message
	output.Changed = outcome.Changed
	return nil
}

// Approve builds the generic payload equivalent of the shorthand approval and
// delegates to SetStatus.
func (a *Adapter) Approve(ctx context.Context, input *ApproveInput, output *Output) error {
	payload := map[string]interface{}{normalizer.KeyAction: MethodApprove}
	if input.Feedback != "" {
		payload[normalizer.KeyFeedback] = input.Feedback
	}
	return a.SetStatus(ctx, &SetStatusInput{
		TaskID:   input.TaskID,
		Status:   string(task.StatusApproved),
		Actor:    input.Actor,
		Metadata: payload,
	}, output)
}

// Reject builds the generic payload equivalent of the shorthand rejection and
// delegates to SetStatus.
func (a *Adapter) Reject(ctx context.Context, input *RejectInput, output *Output) error {
	payload := map[string]interface{}{normalizer.KeyAction: MethodReject}
	if input.Reason != "" {
		payload[normalizer.KeyRejectionReason] = input.Reason
	}
	return a.SetStatus(ctx, &SetStatusInput{
		TaskID:   input.TaskID,
		Status:   string(task.StatusRejected),
		Actor:    input.Actor,
		Metadata: payload,
	}, output)
}

// History returns the audit trail of a task.
func (a *Adapter) History(ctx context.Context, taskID string) ([]*task.History, error) {
	return a.coordinator.History(ctx, taskID)
}

// Name returns the registry service name.
func (a *Adapter) Name() string {
	return Name
}

// Methods returns the method signatures of the adapter.
func (a *Adapter) Methods() types.Signatures {
	return types.Signatures{
		{
			Name:        MethodSetStatus,
			Description: "Changes a task status with a free-form metadata payload",
			Input:       reflect.TypeOf(&SetStatusInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        MethodApprove,
			Description: "Approves a task with optional feedback",
			Input:       reflect.TypeOf(&ApproveInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        MethodReject,
			Description: "Rejects a task with a reason",
			Input:       reflect.TypeOf(&RejectInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns an executable for the given method name.
func (a *Adapter) Method(name string) (types.Executable, error) {
	switch name {
	case MethodSetStatus:
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*SetStatusInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return a.SetStatus(ctx, input, output)
		}, nil
	case MethodApprove:
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*ApproveInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return a.Approve(ctx, input, output)
		}, nil
	case MethodReject:
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*RejectInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return a.Reject(ctx, input, output)
		}, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}

// Dispatch converts a raw payload into the method's typed input and executes
// it. Untyped callers (HTTP handlers, queue consumers) use it to reach any of
// the registered methods.
func (a *Adapter) Dispatch(ctx context.Context, method string, payload map[string]interface{}) (*Output, error) {
	signature := a.Methods().Lookup(method)
	if signature == nil {
		return nil, types.NewMethodNotFoundError(method)
	}
	executable, err := a.Method(method)
	if err != nil {
		return nil, err
	}
	input := reflect.New(signature.Input.Elem()).Interface()
	if err := a.converter.Convert(payload, input); err != nil {
		return nil, err
	}
	output := &Output{}
	if err := executable(ctx, input, output); err != nil {
		return nil, err
	}
	return output, nil
}

var _ types.Service = (*Adapter)(nil)
