package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medsumma/internal/app"
	"medsumma/internal/asr"
	"medsumma/internal/queue"
	"medsumma/internal/store"
)

func newWorkerDeps() (app.TranscriberDeps, *asr.MockTranscriber, *store.MockStore) {
	mockASR := new(asr.MockTranscriber)
	mockStore := new(store.MockStore)
	deps := app.TranscriberDeps{
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:       mockStore,
		Transcriber: mockASR,
	}
	return deps, mockASR, mockStore
}

func transcribeTask(t *testing.T, payload transcribeTaskPayload) queue.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return queue.Task{ID: uuid.New(), Type: queue.TaskTypeTranscribe, Payload: body}
}

func TestTranscribeHandlerStoresText(t *testing.T) {
	deps, mockASR, mockStore := newWorkerDeps()

	transcriptID := uuid.New()
	mockASR.On("Transcribe", mock.Anything, "visit.mp3", mock.Anything).
		Return("take two tablets daily", nil).Once()
	mockStore.On("SetTranscriptText", mock.Anything, transcriptID, "take two tablets daily").
		Return(nil).Once()

	task := transcribeTask(t, transcribeTaskPayload{
		TranscriptID: transcriptID,
		Filename:     "visit.mp3",
		Audio:        []byte("audio bytes"),
	})
	err := transcribeHandler(deps)(context.Background(), task)

	require.NoError(t, err)
	mockASR.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestTranscribeHandlerRetriableFailure(t *testing.T) {
	deps, mockASR, mockStore := newWorkerDeps()

	transcriptID := uuid.New()
	mockASR.On("Transcribe", mock.Anything, "visit.mp3", mock.Anything).
		Return("", assert.AnError).Once()

	task := transcribeTask(t, transcribeTaskPayload{TranscriptID: transcriptID, Filename: "visit.mp3"})
	task.Attempts = 1 // retries remain

	err := transcribeHandler(deps)(context.Background(), task)

	require.Error(t, err)
	mockStore.AssertNotCalled(t, "UpdateTranscriptStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTranscribeHandlerFinalAttemptMarksFailed(t *testing.T) {
	deps, mockASR, mockStore := newWorkerDeps()

	transcriptID := uuid.New()
	mockASR.On("Transcribe", mock.Anything, "visit.mp3", mock.Anything).
		Return("", assert.AnError).Once()
	mockStore.On("UpdateTranscriptStatus", mock.Anything, transcriptID, store.TranscriptFailed).
		Return(nil).Once()

	task := transcribeTask(t, transcribeTaskPayload{TranscriptID: transcriptID, Filename: "visit.mp3"})
	task.Attempts = 4 // fifth and final attempt

	err := transcribeHandler(deps)(context.Background(), task)

	require.Error(t, err)
	mockStore.AssertExpectations(t)
}

func TestTranscribeHandlerDropsMalformedPayload(t *testing.T) {
	deps, mockASR, _ := newWorkerDeps()

	task := queue.Task{ID: uuid.New(), Type: queue.TaskTypeTranscribe, Payload: []byte("{not json")}
	err := transcribeHandler(deps)(context.Background(), task)

	assert.NoError(t, err)
	mockASR.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
}
