// Package core wires the summarization pipeline together: it offloads
// generation calls to background tasks, recovers structured data from the
// output, and maintains conversation sessions through the store.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"medsumma/internal/cache"
	"medsumma/internal/extract"
	"medsumma/internal/llm"
	"medsumma/internal/store"
	"medsumma/internal/summary"
	"medsumma/internal/taskexec"
)

// SummaryApology is shown in place of a summary when the initial
// generation call fails. No session is created on that path.
const SummaryApology = "We're sorry - the summary could not be generated. " +
	"Please adjust your input and try again."

// followUpApology stands in for an answer when a follow-up generation call
// fails. The session history is left untouched.
const followUpApology = "We're sorry - an answer could not be generated right now. " +
	"Please try asking again."

// ErrEmptyInput is returned when there is no text to summarize.
var ErrEmptyInput = errors.New("no text to summarize")

// Service runs summarizations and follow-up questions against the
// collaborating generation service, session store, and answer cache.
type Service struct {
	LLM          llm.Client
	Store        store.Store
	Cache        cache.Cache
	Log          *slog.Logger
	PollInterval time.Duration
	AnswerTTL    time.Duration
}

// Summarize turns free-form medical text (plus an optional image) into a
// session holding a patient-readable summary.
//
// The generation call runs on a background task polled at PollInterval.
// If extraction finds no structured record, the raw generation text is used
// verbatim as the summary so the caller always gets something readable.
// A generation failure creates no session and is returned to the caller.
func (s *Service) Summarize(ctx context.Context, text, imagePath string) (store.Session, error) {
	if strings.TrimSpace(text) == "" {
		return store.Session{}, ErrEmptyInput
	}

	raw, err := s.generate(ctx, llm.PromptInitial, text, imagePath)
	if err != nil {
		return store.Session{}, fmt.Errorf("generation failed: %w", err)
	}

	newSession := store.NewSession{
		OriginalText: text,
		ImagePath:    imagePath,
	}
	rec, err := extract.Record(raw)
	switch {
	case errors.Is(err, extract.ErrNoStructuredData):
		// Degrade gracefully: unformatted but real output beats an
		// error page.
		s.Log.Warn("no structured data in generation output, using raw text")
		newSession.SummaryHTML = raw
	case err != nil:
		return store.Session{}, err
	default:
		structured := summary.FromRecord(rec)
		newSession.Structured = &structured
		newSession.SummaryHTML = summary.Format(structured)
	}

	sess, err := s.Store.CreateSession(ctx, newSession)
	if err != nil {
		return store.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}
	s.Log.Info("session created", "session_id", sess.ID, "structured", newSession.Structured != nil)
	return sess, nil
}

// Ask answers one follow-up question grounded in the session's original
// text, summary, and prior turns.
//
// A blank question short-circuits: the current transcript comes back
// unchanged with an empty answer and no generation call. When the
// generation call fails, the apology text is returned as the answer and no
// turn is appended, so a transient fault never corrupts history.
func (s *Service) Ask(ctx context.Context, sessionID uuid.UUID, question string) (string, []summary.Message, error) {
	sess, err := s.Store.GetSession(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(question) == "" {
		return "", Transcript(sess.Turns), nil
	}

	answer, ok := s.cachedAnswer(ctx, sessionID, question)
	if !ok {
		raw, err := s.generate(ctx, llm.PromptConversational, followUpPrompt(sess, question), sess.ImagePath)
		if err != nil {
			s.Log.Error("follow-up generation failed", "session_id", sessionID, "err", err)
			return followUpApology, Transcript(sess.Turns), nil
		}
		answer = stripWrapperTags(raw)
		s.storeAnswer(ctx, sessionID, question, answer)
	}

	turn, err := s.Store.AppendTurn(ctx, sessionID, question, answer)
	if err != nil {
		return "", nil, fmt.Errorf("failed to append turn: %w", err)
	}
	return answer, Transcript(append(sess.Turns, turn)), nil
}

// Notes renders a session as the notes-editor HTML view.
func (s *Service) Notes(ctx context.Context, sessionID uuid.UUID) (string, error) {
	sess, err := s.Store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return summary.Notes(sess.SummaryHTML, Transcript(sess.Turns)), nil
}

// generate runs one LLM call on a background task and polls it to
// completion. The task is detached from ctx cancellation: once started it
// always runs to completion, matching the no-cancellation contract.
func (s *Service) generate(ctx context.Context, kind llm.PromptKind, text, imagePath string) (string, error) {
	callCtx := context.WithoutCancel(ctx)
	handle := taskexec.Start(func() (string, error) {
		return s.LLM.Generate(callCtx, kind, text, imagePath)
	})
	return handle.Await(ctx, s.PollInterval, func(tick int) {
		s.Log.Debug("generation in progress", "kind", kind, "ticks", tick)
	})
}

func (s *Service) cachedAnswer(ctx context.Context, sessionID uuid.UUID, question string) (string, bool) {
	if s.Cache == nil {
		return "", false
	}
	answer, ok, err := s.Cache.GetAnswer(ctx, cache.Key(sessionID, question))
	if err != nil {
		s.Log.Warn("answer cache lookup failed", "err", err)
		return "", false
	}
	if ok {
		s.Log.Info("answer cache hit", "session_id", sessionID)
	}
	return answer, ok
}

func (s *Service) storeAnswer(ctx context.Context, sessionID uuid.UUID, question, answer string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SetAnswer(ctx, cache.Key(sessionID, question), answer, s.AnswerTTL); err != nil {
		s.Log.Warn("failed to cache answer", "err", err)
	}
}

// Transcript flattens ordered turns into role-tagged messages, one entry
// per side of each turn, suitable for direct display.
func Transcript(turns []store.Turn) []summary.Message {
	out := make([]summary.Message, 0, len(turns)*2)
	for _, t := range turns {
		out = append(out,
			summary.Message{Role: "user", Content: t.Question},
			summary.Message{Role: "assistant", Content: t.Answer},
		)
	}
	return out
}
