package task

import (
	"context"

	mtask "github.com/revuhq/revu/model/task"
	"github.com/revuhq/revu/service/dao"
)

// Service is the task persistence contract. On top of the generic entity
// operations it exposes the transactional commit the status change
// coordinator relies on: the updated task row and exactly one history entry
// become visible together or not at all.
//
// Save is reserved for task creation by the content generator; once a task
// exists every status mutation must go through Commit.
type Service interface {
	dao.Service[string, mtask.Task]

	// Commit atomically persists the updated task together with one appended
	// history entry. The task version must be exactly one ahead of the stored
	// version; otherwise dao.ErrVersionConflict is returned and nothing is
	// written.
	Commit(ctx context.Context, t *mtask.Task, entry *mtask.History) error

	// History returns the append-ordered status history of a task. Unknown
	// tasks yield an empty slice, mirroring history outliving task views.
	History(ctx context.Context, taskID string) ([]*mtask.History, error)
}
