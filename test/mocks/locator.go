package mocks

import (
	"github.com/stretchr/testify/mock"

	"gamegrove/pkg/template"
)

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Locate(c template.Category) (string, error) {
	args := m.Called(c)
	return args.String(0), args.Error(1)
}

func (m *MockLocator) ListAvailable() []template.TemplateInfo {
	args := m.Called()
	if infos, ok := args.Get(0).([]template.TemplateInfo); ok {
		return infos
	}
	return nil
}
