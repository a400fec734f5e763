package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"medsumma/internal/app"
	"medsumma/internal/core"
	"medsumma/internal/httputil"
	"medsumma/internal/queue"
	"medsumma/internal/store"
)

type summarizeRequest struct {
	Text      string `json:"text" validate:"required"`
	ImagePath string `json:"image_path" validate:"omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

type transcribeTaskPayload struct {
	TranscriptID uuid.UUID `json:"transcript_id"`
	Filename     string    `json:"filename"`
	Audio        []byte    `json:"audio"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := newRouter(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/summaries", summarizeHandler(deps))
	r.Get("/api/sessions/{id}", sessionHandler(deps))
	r.Post("/api/sessions/{id}/questions", askHandler(deps))
	r.Get("/api/sessions/{id}/notes", notesHandler(deps))
	r.Post("/api/documents/upload", uploadHandler(deps))
	r.Post("/api/transcripts", transcriptCreateHandler(deps))
	r.Get("/api/transcripts/{id}", transcriptGetHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return r
}

func summarizeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		sess, err := deps.Core.Summarize(r.Context(), req.Text, req.ImagePath)
		if err != nil {
			if errors.Is(err, core.ErrEmptyInput) {
				httputil.Fail(deps.Log, w, "text is required", err, http.StatusBadRequest)
				return
			}
			// Generation failure: apologize instead of a summary; no
			// session exists on this path.
			deps.Log.Error("summarization failed", "err", err)
			httputil.WriteJSON(w, http.StatusBadGateway, map[string]any{
				"error": core.SummaryApology,
			})
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"session_id": sess.ID.String(),
			"summary":    sess.SummaryHTML,
			"structured": sess.Structured != nil,
		})
	}
}

func sessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := parseSessionID(deps, w, r)
		if !ok {
			return
		}
		sess, err := deps.Store.GetSession(r.Context(), sessionID)
		if err != nil {
			failSession(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"session_id":    sess.ID.String(),
			"original_text": sess.OriginalText,
			"summary":       sess.SummaryHTML,
			"structured":    sess.Structured,
			"transcript":    core.Transcript(sess.Turns),
			"created_at":    sess.CreatedAt,
		})
	}
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := parseSessionID(deps, w, r)
		if !ok {
			return
		}
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		answer, transcript, err := deps.Core.Ask(r.Context(), sessionID, req.Question)
		if err != nil {
			failSession(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"answer":     answer,
			"transcript": transcript,
		})
	}
}

func notesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := parseSessionID(deps, w, r)
		if !ok {
			return
		}
		notes, err := deps.Core.Notes(r.Context(), sessionID)
		if err != nil {
			failSession(deps, w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(notes)); err != nil {
			deps.Log.Warn("notes write failed", "err", err)
		}
	}
}

func parseSessionID(deps app.Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return sessionID, true
}

func failSession(deps app.Deps, w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrSessionNotFound) {
		httputil.Fail(deps.Log, w, "session not found", err, http.StatusNotFound)
		return
	}
	httputil.Fail(deps.Log, w, "internal error", err, http.StatusInternalServerError)
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".pdf" && ext != ".txt" {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"filename": header.Filename,
			"text":     extractText(deps, header.Filename, content),
		})
	}
}

// extractText pulls plain text out of an uploaded document so it can be
// pasted into a summarization request.
func extractText(deps app.Deps, filename string, content []byte) string {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		text, err := extractPDF(content)
		if err != nil {
			deps.Log.Warn("pdf extraction failed, using raw bytes", "err", err, "filename", filename)
			return string(content)
		}
		return text
	}
	return string(content)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract.
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func transcriptCreateHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		file, header, err := r.FormFile("audio")
		if err != nil {
			httputil.Fail(deps.Log, w, "audio file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		audio, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read audio", err, http.StatusInternalServerError)
			return
		}

		transcript, err := deps.Store.CreateTranscript(ctx, header.Filename)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist transcript", err, http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(transcribeTaskPayload{
			TranscriptID: transcript.ID,
			Filename:     header.Filename,
			Audio:        audio,
		})
		if err != nil {
			failTranscript(deps, w, r, transcript.ID, "marshal payload failed", err)
			return
		}
		task := queue.Task{Type: queue.TaskTypeTranscribe, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			failTranscript(deps, w, r, transcript.ID, "failed to enqueue transcription; please retry", err)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"transcript_id": transcript.ID.String(),
			"status":        transcript.Status,
		})
	}
}

// failTranscript marks the transcript record failed before responding.
func failTranscript(deps app.Deps, w http.ResponseWriter, r *http.Request, id uuid.UUID, message string, err error) {
	log := deps.Log.With("transcript_id", id)
	if upErr := deps.Store.UpdateTranscriptStatus(r.Context(), id, store.TranscriptFailed); upErr != nil {
		log.Error("failed to mark transcript failed", "err", upErr)
	}
	httputil.Fail(log, w, message, err, http.StatusInternalServerError)
}

func transcriptGetHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid transcript id", err, http.StatusBadRequest)
			return
		}
		transcript, err := deps.Store.GetTranscript(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrTranscriptNotFound) {
				httputil.Fail(deps.Log, w, "transcript not found", err, http.StatusNotFound)
				return
			}
			httputil.Fail(deps.Log, w, "internal error", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"transcript_id": transcript.ID.String(),
			"status":        transcript.Status,
			"text":          transcript.Text,
		})
	}
}
