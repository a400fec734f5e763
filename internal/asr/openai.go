package asr

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultTranscribeTimeout = 120 * time.Second

// OpenAITranscriber calls the OpenAI audio transcriptions API.
type OpenAITranscriber struct {
	model  openai.AudioModel
	client *openai.Client
}

// NewOpenAITranscriber builds a transcriber against api.openai.com.
func NewOpenAITranscriber(apiKey string, model openai.AudioModel) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.AudioModelWhisper1
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAITranscriber{
		model:  model,
		client: &cli,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if t == nil || t.client == nil {
		return "", fmt.Errorf("nil openai transcriber")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultTranscribeTimeout)
	defer cancel()

	resp, err := t.client.Audio.Transcriptions.New(reqCtx, openai.AudioTranscriptionNewParams{
		Model: t.model,
		File:  openai.File(audio, filename, "application/octet-stream"),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
