package mqtt

import (
	"fmt"
	"sync"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

// MockNotifier is a simple notifier used in tests.
type MockNotifier struct {
	mu      sync.Mutex
	Jobs    map[string]model.ScheduledJob
	FailIDs map[string]bool
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Jobs:    make(map[string]model.ScheduledJob),
		FailIDs: make(map[string]bool),
	}
}

// NotifyAssignment records the job or returns an error if configured to fail.
func (m *MockNotifier) NotifyAssignment(technicianID string, job model.ScheduledJob) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[technicianID] {
		return "", fmt.Errorf("notify failed")
	}
	m.Jobs[technicianID] = job
	return fmt.Sprintf("cmd-%s", technicianID), nil
}
