package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"StoreProvider", cfg.StoreProvider, "postgres"},
		{"QueueProvider", cfg.QueueProvider, "nats"},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"LLMModel", cfg.LLMModel, "gpt-4o-mini"},
		{"ASRModel", cfg.ASRModel, "whisper-1"},
		{"PollInterval", cfg.PollInterval, 400 * time.Millisecond},
		{"AnswerCacheTTL", cfg.AnswerCacheTTL, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	originalPort := os.Getenv("PORT")
	originalPoll := os.Getenv("POLL_INTERVAL")
	defer func() {
		os.Setenv("PORT", originalPort)
		os.Setenv("POLL_INTERVAL", originalPoll)
	}()

	os.Setenv("PORT", "9090")
	os.Setenv("POLL_INTERVAL", "50ms")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("expected poll interval 50ms, got %s", cfg.PollInterval)
	}
}
