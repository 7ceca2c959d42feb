package coordinator

import (
	"github.com/revuhq/revu/model/task"
)

// Standard event topics.
const (
	TopicStatusChanged = "task.statusChanged"
)

// Event is published on the coordinator queue after every committed
// transition. Consumers (dashboards, read-through caches) use it to
// invalidate, never to write.
type Event struct {
	Topic string        `json:"topic"`
	Task  *task.Task    `json:"task"`
	Entry *task.History `json:"entry"`
}
