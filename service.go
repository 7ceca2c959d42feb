package revu

import (
	"reflect"

	"github.com/viant/x"

	"github.com/revuhq/revu/extension"
	"github.com/revuhq/revu/model/types"
	"github.com/revuhq/revu/policy"
	"github.com/revuhq/revu/service/coordinator"
	dtask "github.com/revuhq/revu/service/dao/task"
	"github.com/revuhq/revu/service/dao/task/fs"
	"github.com/revuhq/revu/service/dao/task/memory"
	"github.com/revuhq/revu/service/ingress"
	"github.com/revuhq/revu/service/messaging"
	mmemory "github.com/revuhq/revu/service/messaging/memory"
)

// Service is the high-level façade wiring the task store, transition policy,
// coordinator and ingress adapter together.
type Service struct {
	config            *Config
	taskDao           dtask.Service
	queue             messaging.Queue[coordinator.Event]
	policy            *policy.Policy
	coordinator       *coordinator.Service
	adapter           *ingress.Adapter
	actions           *extension.Actions
	extensionTypes    []*x.Type
	extensionServices []types.Service
}

// New creates a fully wired service.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if ret.config == nil {
		ret.config = DefaultConfig()
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if err := ret.ensureBaseSetup(); err != nil {
		return nil, err
	}

	ret.coordinator = coordinator.New(ret.taskDao,
		coordinator.WithConfig(ret.config.Coordinator),
		coordinator.WithPolicy(ret.policy),
		coordinator.WithEventQueue(ret.queue))
	ret.adapter = ingress.New(ret.coordinator)

	ret.actions = extension.NewActions(ret.extensionTypes...)
	ret.actions.Types().Register(x.NewType(reflect.TypeOf(ingress.SetStatusInput{}), x.WithName("task.SetStatusInput")))
	ret.actions.Types().Register(x.NewType(reflect.TypeOf(ingress.ApproveInput{}), x.WithName("task.ApproveInput")))
	ret.actions.Types().Register(x.NewType(reflect.TypeOf(ingress.RejectInput{}), x.WithName("task.RejectInput")))
	ret.actions.Types().Register(x.NewType(reflect.TypeOf(ingress.Output{}), x.WithName("task.Output")))
	ret.actions.Register(ret.adapter)
	for _, service := range ret.extensionServices {
		ret.actions.Register(service)
	}
	return ret, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.taskDao == nil {
		switch s.config.Store.Vendor {
		case StoreVendorFs:
			dao, err := fs.New(s.config.Store.BaseURL)
			if err != nil {
				return err
			}
			s.taskDao = dao
		default:
			s.taskDao = memory.New()
		}
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[coordinator.Event](mmemory.DefaultConfig())
	}
	if s.policy == nil {
		s.policy = policy.New()
	}
	return nil
}

// Coordinator returns the status change coordinator.
func (s *Service) Coordinator() *coordinator.Service {
	return s.coordinator
}

// Adapter returns the ingress adapter.
func (s *Service) Adapter() *ingress.Adapter {
	return s.adapter
}

// Actions returns the edge service registry.
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// Events returns the queue transition events are published on.
func (s *Service) Events() messaging.Queue[coordinator.Event] {
	return s.queue
}

// TaskStore returns the underlying task store.
func (s *Service) TaskStore() dtask.Service {
	return s.taskDao
}

// RegisterExtensionTypes adds IO types to the registry.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

// RegisterExtensionServices adds services to the registry.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}
