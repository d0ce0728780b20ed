package testutil

import (
	"github.com/stretchr/testify/mock"
)

// MockRenderer is a testify mock of template.Renderer
type MockRenderer struct {
	mock.Mock
}

// Render records the call and returns the configured bytes and error
func (m *MockRenderer) Render(name string, content []byte, ctx map[string]any) ([]byte, error) {
	args := m.Called(name, content, ctx)
	var out []byte
	if v := args.Get(0); v != nil {
		out = v.([]byte)
	}
	return out, args.Error(1)
}
