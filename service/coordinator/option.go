package coordinator

import (
	"time"

	"github.com/revuhq/revu/policy"
	"github.com/revuhq/revu/service/messaging"
	"github.com/revuhq/revu/service/normalizer"
)

// Option customises the coordinator service.
type Option func(*Service)

// WithPolicy overrides the transition policy table.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithNormalizer overrides the metadata normalizer.
func WithNormalizer(n *normalizer.Service) Option {
	return func(s *Service) {
		s.normalizer = n
	}
}

// WithEventQueue sets the queue transition events are published on. Without
// it events are dropped.
func WithEventQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) {
		s.events = queue
	}
}

// WithConfig sets the coordinator configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithClock overrides the time source used for updatedAt and history
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}
