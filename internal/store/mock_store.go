package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateSession(ctx context.Context, s NewSession) (Session, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockStore) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockStore) AppendTurn(ctx context.Context, sessionID uuid.UUID, question, answer string) (Turn, error) {
	args := m.Called(ctx, sessionID, question, answer)
	return args.Get(0).(Turn), args.Error(1)
}

func (m *MockStore) CreateTranscript(ctx context.Context, filename string) (Transcript, error) {
	args := m.Called(ctx, filename)
	return args.Get(0).(Transcript), args.Error(1)
}

func (m *MockStore) GetTranscript(ctx context.Context, id uuid.UUID) (Transcript, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Transcript), args.Error(1)
}

func (m *MockStore) SetTranscriptText(ctx context.Context, id uuid.UUID, text string) error {
	args := m.Called(ctx, id, text)
	return args.Error(0)
}

func (m *MockStore) UpdateTranscriptStatus(ctx context.Context, id uuid.UUID, status TranscriptStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
