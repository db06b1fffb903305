package mocks

import (
	"context"
	"sync"
)

type MockLauncher struct {
	mu    sync.Mutex
	Calls []LaunchCall
	Err   error
}

type LaunchCall struct {
	Command string
	Args    []string
}

func NewMockLauncher() *MockLauncher {
	return &MockLauncher{}
}

func (m *MockLauncher) Launch(ctx context.Context, command string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, LaunchCall{
		Command: command,
		Args:    append([]string(nil), args...),
	})
	return m.Err
}

func (m *MockLauncher) LastCall() (LaunchCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return LaunchCall{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
