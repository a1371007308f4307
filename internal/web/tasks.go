package web

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle of one scrape task.
type TaskStatus string

const (
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusError      TaskStatus = "error"
	StatusNotFound   TaskStatus = "not_found"
)

// Task is one background scrape run's state as the API reports it.
type Task struct {
	Status TaskStatus `json:"status"`
	File   string     `json:"file,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// TaskStore is the in-memory task map. Tasks are process-scoped; a
// restart forgets them, same as the original service.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: map[string]Task{}}
}

// NewID issues a short task id.
func (s *TaskStore) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *TaskStore) Set(id string, t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = t
}

func (s *TaskStore) Get(id string) Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{Status: StatusNotFound}
	}
	return t
}
