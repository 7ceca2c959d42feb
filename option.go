package revu

import (
	"github.com/viant/x"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/revuhq/revu/model/types"
	"github.com/revuhq/revu/policy"
	"github.com/revuhq/revu/service/coordinator"
	dtask "github.com/revuhq/revu/service/dao/task"
	"github.com/revuhq/revu/service/messaging"
	"github.com/revuhq/revu/tracing"
)

// Option customises the service façade.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithTaskDAO overrides the task store.
func WithTaskDAO(dao dtask.Service) Option {
	return func(s *Service) {
		s.taskDao = dao
	}
}

// WithEventQueue overrides the queue transition events are published on.
func WithEventQueue(queue messaging.Queue[coordinator.Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithPolicy overrides the transition policy table.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithExtensionTypes sets additional IO types registered with the actions
// registry.
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}

// WithExtensionServices sets additional services registered with the actions
// registry.
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file
// path. Safe to call multiple times, the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
