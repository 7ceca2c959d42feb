package memory

import (
	"context"
	"sync"
	"time"

	mtask "github.com/revuhq/revu/model/task"
	"github.com/revuhq/revu/service/dao"
	dtask "github.com/revuhq/revu/service/dao/task"
)

// Service implements in-memory task storage. All operations are thread-safe
// and return **copies** of the underlying objects to prevent data races when
// callers mutate the returned instances. Commit holds one lock across the
// task update and the history append so both writes are visible together.
type Service struct {
	tasks   map[string]*mtask.Task
	history map[string][]*mtask.History
	mux     sync.RWMutex
}

// Compile-time check that Service implements the task store interface.
var _ dtask.Service = (*Service)(nil)

// New creates an empty in-memory task store.
func New() *Service {
	return &Service{
		tasks:   map[string]*mtask.Task{},
		history: map[string][]*mtask.History{},
	}
}

// Save persists (a clone of) the supplied task. It is used by the content
// generator to create draft tasks; status mutations go through Commit.
func (s *Service) Save(_ context.Context, t *mtask.Task) error {
	if t == nil {
		return dao.ErrNilEntity
	}
	if t.ID == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	s.tasks[t.ID] = t.Clone()
	return nil
}

// Load retrieves a copy of the task or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, id string) (*mtask.Task, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	t, ok := s.tasks[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return t.Clone(), nil
}

// Delete removes a task. History is retained on purpose - audit entries
// outlive any task view.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// List returns copies of all stored tasks.
func (s *Service) List(_ context.Context) ([]*mtask.Task, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*mtask.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

// Commit atomically replaces the task row and appends one history entry. The
// incoming task version must be exactly one ahead of the stored version;
// concurrent committers lose with dao.ErrVersionConflict and no write occurs.
func (s *Service) Commit(_ context.Context, t *mtask.Task, entry *mtask.History) error {
	if t == nil || entry == nil {
		return dao.ErrNilEntity
	}
	if t.ID == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	stored, ok := s.tasks[t.ID]
	if !ok {
		return dao.ErrNotFound
	}
	if t.Version != stored.Version+1 {
		return dao.ErrVersionConflict
	}

	appended := entry.Clone()
	if appended.CreatedAt.IsZero() {
		appended.CreatedAt = time.Now()
	}
	s.tasks[t.ID] = t.Clone()
	s.history[t.ID] = append(s.history[t.ID], appended)
	return nil
}

// History returns copies of the task history in append order.
func (s *Service) History(_ context.Context, taskID string) ([]*mtask.History, error) {
	if taskID == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	defer s.mux.RUnlock()

	entries := s.history[taskID]
	out := make([]*mtask.History, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Clone())
	}
	return out, nil
}
