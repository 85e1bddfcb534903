// Package task tracks long-running ingestion jobs in process memory so HTTP
// callers can poll them by id.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Task is one tracked ingestion job. Entries live for the process lifetime;
// they are mutated only by the goroutine running the job and read by the
// HTTP layer through snapshot copies.
type Task struct {
	ID          string    `json:"task_id"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	SourceType  string    `json:"source_type,omitempty"`
	SourceValue string    `json:"source_value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manager owns the task map. All access goes through the mutex; reads return
// snapshots, never pointers into the map.
type Manager struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewManager() *Manager {
	return &Manager{tasks: make(map[string]*Task)}
}

// Create registers a new task in the queued state and returns its id.
func (m *Manager) Create(filename, sourceType, sourceValue string) string {
	id := uuid.New().String()
	now := time.Now().UTC()

	m.mu.Lock()
	m.tasks[id] = &Task{
		ID:          id,
		Status:      StatusQueued,
		Filename:    filename,
		SourceType:  sourceType,
		SourceValue: sourceValue,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.mu.Unlock()

	return id
}

// Get returns a snapshot of the task, or false if the id is unknown.
func (m *Manager) Get(id string) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Run executes fn in its own goroutine, moving the task through
// processing and into completed or failed. cleanup always runs after fn,
// success or failure; pass nil when there is nothing to release. A panic in
// fn fails the task instead of crashing the process.
func (m *Manager) Run(ctx context.Context, id string, fn func(ctx context.Context) error, cleanup func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "ingestion task panicked", "task_id", id, "panic", r)
				m.update(id, StatusFailed, fmt.Sprintf("internal error: %v", r))
			}
			if cleanup != nil {
				cleanup()
			}
		}()

		m.update(id, StatusProcessing, "processing started")

		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "ingestion task failed", "task_id", id, "error", err)
			m.update(id, StatusFailed, err.Error())
			return
		}

		m.update(id, StatusCompleted, "data ingested successfully")
	}()
}

func (m *Manager) update(id string, status Status, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return
	}
	t.Status = status
	t.Message = message
	t.UpdatedAt = time.Now().UTC()
}
