package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	mtask "github.com/revuhq/revu/model/task"
	"github.com/revuhq/revu/service/dao"
	dtask "github.com/revuhq/revu/service/dao/task"
)

// Service implements filesystem-based task storage on top of viant/afs. Each
// task is kept in a single JSON document holding the task row together with
// its history, so a Commit is one atomic upload - the updated row and the
// appended entry become visible together. The store assumes a single writing
// process per base location, matching request-per-call embedding.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.Mutex
}

// record is the on-disk document layout.
type record struct {
	Task    *mtask.Task      `json:"task"`
	History []*mtask.History `json:"history,omitempty"`
}

// Ensure Service implements the task store interface.
var _ dtask.Service = (*Service)(nil)

// New creates a filesystem task store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fsService := afs.New()
	ctx := context.Background()
	exists, _ := fsService.Exists(ctx, basePath)
	if !exists {
		if err := fsService.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)

	return &Service{basePath: basePath, fs: fsService}, nil
}

// Save persists a task document, retaining any history recorded earlier for
// the same id.
func (s *Service) Save(ctx context.Context, t *mtask.Task) error {
	if t == nil {
		return dao.ErrNilEntity
	}
	if t.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, t.ID)
	if err != nil && err != dao.ErrNotFound {
		return err
	}
	if rec == nil {
		rec = &record{}
	}
	rec.Task = t.Clone()
	return s.upload(ctx, t.ID, rec)
}

// Load retrieves a task or dao.ErrNotFound.
func (s *Service) Load(ctx context.Context, id string) (*mtask.Task, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Task == nil {
		return nil, dao.ErrNotFound
	}
	return rec.Task.Clone(), nil
}

// Delete removes a task document, history included. The engine itself never
// hard-deletes; the operation exists for housekeeping by embedders.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.taskPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if task exists: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete task file %s: %w", filePath, err)
	}
	return nil
}

// List returns all stored tasks.
func (s *Service) List(ctx context.Context) ([]*mtask.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list task files: %w", err)
	}

	var tasks []*mtask.Task
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read task file %s: %w", object.URL(), err)
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task from %s: %w", object.URL(), err)
		}
		if rec.Task != nil {
			tasks = append(tasks, rec.Task)
		}
	}
	return tasks, nil
}

// Commit atomically persists the updated task and one appended history entry
// by rewriting the task document in a single upload. The version check
// mirrors the memory store.
func (s *Service) Commit(ctx context.Context, t *mtask.Task, entry *mtask.History) error {
	if t == nil || entry == nil {
		return dao.ErrNilEntity
	}
	if t.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, t.ID)
	if err != nil {
		return err
	}
	if rec.Task == nil {
		return dao.ErrNotFound
	}
	if t.Version != rec.Task.Version+1 {
		return dao.ErrVersionConflict
	}

	appended := entry.Clone()
	if appended.CreatedAt.IsZero() {
		appended.CreatedAt = time.Now()
	}
	rec.Task = t.Clone()
	rec.History = append(rec.History, appended)
	return s.upload(ctx, t.ID, rec)
}

// History returns the append-ordered history of a task; unknown ids yield an
// empty slice.
func (s *Service) History(ctx context.Context, taskID string) ([]*mtask.History, error) {
	if taskID == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, taskID)
	if err == dao.ErrNotFound {
		return []*mtask.History{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]*mtask.History, 0, len(rec.History))
	for _, entry := range rec.History {
		out = append(out, entry.Clone())
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*record, error) {
	filePath := s.taskPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if task exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", filePath, err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task data: %w", err)
	}
	return &rec, nil
}

func (s *Service) upload(ctx context.Context, id string, rec *record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	filePath := s.taskPath(id)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save task to file %s: %w", filePath, err)
	}
	return nil
}

// taskPath returns the document path for a task.
func (s *Service) taskPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}
