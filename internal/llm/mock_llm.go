package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Generate(ctx context.Context, kind PromptKind, text, imagePath string) (string, error) {
	args := m.Called(ctx, kind, text, imagePath)
	return args.String(0), args.Error(1)
}
