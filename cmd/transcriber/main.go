package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"medsumma/internal/app"
	"medsumma/internal/httputil"
	"medsumma/internal/queue"
	"medsumma/internal/store"
)

type transcribeTaskPayload struct {
	TranscriptID uuid.UUID `json:"transcript_id"`
	Filename     string    `json:"filename"`
	Audio        []byte    `json:"audio"`
}

func main() {
	deps, err := app.BuildTranscriber()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("transcriber worker starting")
		return deps.Queue.Worker(ctx, queue.TaskTypeTranscribe, transcribeHandler(deps))
	})
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.Port, "transcriber")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("transcriber stopped", "err", err)
		os.Exit(1)
	}
}

// transcribeHandler runs the speech model over queued audio and stores the
// resulting text. A returned error re-enqueues the task with backoff; on
// the final attempt the transcript is marked failed before giving up.
func transcribeHandler(deps app.TranscriberDeps) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var payload transcribeTaskPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			// Malformed payloads never become valid; drop without retry.
			deps.Log.Error("invalid transcription payload", "task_id", task.ID, "err", err)
			return nil
		}
		log := deps.Log.With("transcript_id", payload.TranscriptID, "filename", payload.Filename)

		text, err := deps.Transcriber.Transcribe(ctx, payload.Filename, bytes.NewReader(payload.Audio))
		if err != nil {
			if lastAttempt(task) {
				log.Error("transcription permanently failed", "err", err)
				if upErr := deps.Store.UpdateTranscriptStatus(ctx, payload.TranscriptID, store.TranscriptFailed); upErr != nil {
					log.Error("failed to mark transcript failed", "err", upErr)
				}
			}
			return fmt.Errorf("transcription failed: %w", err)
		}

		if err := deps.Store.SetTranscriptText(ctx, payload.TranscriptID, text); err != nil {
			return fmt.Errorf("failed to store transcript text: %w", err)
		}
		log.Info("transcript ready", "chars", len(text))
		return nil
	}
}

// lastAttempt reports whether a failure now would exhaust the task's retry
// budget, mirroring the queue's default of 5 attempts.
func lastAttempt(task queue.Task) bool {
	maxAttempts := task.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 5
	}
	return task.Attempts+1 >= maxAttempts
}
