package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"medsumma/internal/summary"
)

// TranscriptStatus tracks an audio transcription job.
type TranscriptStatus string

const (
	TranscriptProcessing TranscriptStatus = "processing"
	TranscriptReady      TranscriptStatus = "ready"
	TranscriptFailed     TranscriptStatus = "failed"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrTranscriptNotFound = errors.New("transcript not found")
)

// Turn is one question/answer pair in a session's history. Turns are
// immutable once written; history only ever grows.
type Turn struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Index     int
	Question  string
	Answer    string
	CreatedAt time.Time
}

// Session is the accumulated state of one summarization conversation.
// OriginalText and SummaryHTML are set once at creation; Turns is ordered
// chronologically.
type Session struct {
	ID           uuid.UUID
	OriginalText string
	SummaryHTML  string
	ImagePath    string
	Structured   *summary.Structured
	Turns        []Turn
	CreatedAt    time.Time
}

// NewSession carries the fields of a session being created after a
// successful initial generation. Structured is nil when extraction failed
// and the summary is raw generation text.
type NewSession struct {
	OriginalText string
	SummaryHTML  string
	ImagePath    string
	Structured   *summary.Structured
}

// Transcript is a persisted audio transcription job.
type Transcript struct {
	ID        uuid.UUID
	Filename  string
	Status    TranscriptStatus
	Text      string
	CreatedAt time.Time
}

// Store defines the persistence contract. Sessions are resolved by
// identifier and mutated only through AppendTurn, which persists a new
// immutable turn rather than handing out a shared mutable history.
type Store interface {
	CreateSession(ctx context.Context, s NewSession) (Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (Session, error)
	AppendTurn(ctx context.Context, sessionID uuid.UUID, question, answer string) (Turn, error)

	CreateTranscript(ctx context.Context, filename string) (Transcript, error)
	GetTranscript(ctx context.Context, id uuid.UUID) (Transcript, error)
	SetTranscriptText(ctx context.Context, id uuid.UUID, text string) error
	UpdateTranscriptStatus(ctx context.Context, id uuid.UUID, status TranscriptStatus) error
}
