// Package asr wraps audio transcription behind a small interface so the
// transcription worker does not care which speech model is used.
package asr

import (
	"context"
	"io"
)

// Transcriber converts recorded audio into text. filename carries the
// original name so providers can infer the container format.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}
