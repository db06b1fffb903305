package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordProject(action, name, template string, duration time.Duration, err error) error {
	args := m.Called(action, name, template, duration, err)
	return args.Error(0)
}

func (m *MockRecorder) RecordListing(root string, count int, err error) error {
	args := m.Called(root, count, err)
	return args.Error(0)
}

func (m *MockRecorder) RecordOpen(target, path string, err error) error {
	args := m.Called(target, path, err)
	return args.Error(0)
}
