package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"medsumma/internal/summary"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock so gateway and transcriber do not race on schema setup.
	const lockID = 748291047

	var acquired bool
	if err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		// Another service is migrating; wait briefly and skip.
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			original_text TEXT NOT NULL,
			summary_html TEXT NOT NULL,
			image_path TEXT NOT NULL DEFAULT '',
			has_structured BOOLEAN NOT NULL DEFAULT FALSE,
			key_takeaways TEXT[] NOT NULL DEFAULT '{}',
			questions_for_provider TEXT[] NOT NULL DEFAULT '{}',
			medications JSONB NOT NULL DEFAULT '[]',
			medical_terms JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			id UUID PRIMARY KEY,
			session_id UUID REFERENCES sessions(id) ON DELETE CASCADE,
			ord INT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now(),
			UNIQUE (session_id, ord)
		);`,
		`CREATE TABLE IF NOT EXISTS transcripts (
			id UUID PRIMARY KEY,
			filename TEXT,
			status TEXT,
			text TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// sessionRow holds the column values derived from an optional structured
// record. The slices are always non-nil: a nil slice through pq.Array
// serializes as SQL NULL, which the NOT NULL array columns reject.
type sessionRow struct {
	takeaways []string
	questions []string
	meds      []byte
	terms     []byte
}

func newSessionRow(structured *summary.Structured) (sessionRow, error) {
	row := sessionRow{
		takeaways: []string{},
		questions: []string{},
		meds:      []byte("[]"),
		terms:     []byte("[]"),
	}
	if structured == nil {
		return row, nil
	}
	row.takeaways = append(row.takeaways, structured.KeyTakeaways...)
	row.questions = append(row.questions, structured.QuestionsForProvider...)
	var err error
	if structured.Medications != nil {
		if row.meds, err = json.Marshal(structured.Medications); err != nil {
			return sessionRow{}, err
		}
	}
	if structured.MedicalTerms != nil {
		if row.terms, err = json.Marshal(structured.MedicalTerms); err != nil {
			return sessionRow{}, err
		}
	}
	return row, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, n NewSession) (Session, error) {
	id := uuid.New()
	structured := n.Structured

	row, err := newSessionRow(structured)
	if err != nil {
		return Session{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions(id, original_text, summary_html, image_path, has_structured,
			key_takeaways, questions_for_provider, medications, medical_terms)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, n.OriginalText, n.SummaryHTML, n.ImagePath, structured != nil,
		pq.Array(row.takeaways), pq.Array(row.questions), row.meds, row.terms)
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:           id,
		OriginalText: n.OriginalText,
		SummaryHTML:  n.SummaryHTML,
		ImagePath:    n.ImagePath,
		Structured:   structured,
		CreatedAt:    time.Now(),
	}, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	var (
		sess          Session
		hasStructured bool
		takeaways     []string
		questions     []string
		meds          []byte
		terms         []byte
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, original_text, summary_html, image_path, has_structured,
			key_takeaways, questions_for_provider, medications, medical_terms, created_at
		FROM sessions WHERE id=$1`, id)
	err := row.Scan(&sess.ID, &sess.OriginalText, &sess.SummaryHTML, &sess.ImagePath,
		&hasStructured, pq.Array(&takeaways), pq.Array(&questions), &meds, &terms, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	if hasStructured {
		structured := &summary.Structured{
			KeyTakeaways:         takeaways,
			QuestionsForProvider: questions,
		}
		if err := json.Unmarshal(meds, &structured.Medications); err != nil {
			return Session{}, err
		}
		if err := json.Unmarshal(terms, &structured.MedicalTerms); err != nil {
			return Session{}, err
		}
		sess.Structured = structured
	}

	turns, err := s.listTurns(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.Turns = turns
	return sess, nil
}

func (s *PostgresStore) listTurns(ctx context.Context, sessionID uuid.UUID) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ord, question, answer, created_at
		FROM turns WHERE session_id=$1 ORDER BY ord`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		t := Turn{SessionID: sessionID}
		if err := rows.Scan(&t.ID, &t.Index, &t.Question, &t.Answer, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AppendTurn persists a new turn at the end of the session's history. The
// ord assignment runs in a transaction so concurrent appends cannot write
// the same slot.
func (s *PostgresStore) AppendTurn(ctx context.Context, sessionID uuid.UUID, question, answer string) (Turn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Turn{}, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id=$1)`, sessionID).Scan(&exists); err != nil {
		return Turn{}, err
	}
	if !exists {
		return Turn{}, ErrSessionNotFound
	}

	turn := Turn{ID: uuid.New(), SessionID: sessionID, Question: question, Answer: answer}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO turns(id, session_id, ord, question, answer)
		SELECT $1, $2, COALESCE(MAX(ord)+1, 0), $3, $4 FROM turns WHERE session_id=$2
		RETURNING ord, created_at`,
		turn.ID, sessionID, question, answer).Scan(&turn.Index, &turn.CreatedAt)
	if err != nil {
		return Turn{}, err
	}
	if err := tx.Commit(); err != nil {
		return Turn{}, err
	}
	return turn, nil
}

func (s *PostgresStore) CreateTranscript(ctx context.Context, filename string) (Transcript, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `INSERT INTO transcripts(id, filename, status) VALUES($1,$2,$3)`,
		id, filename, TranscriptProcessing)
	if err != nil {
		return Transcript{}, err
	}
	return Transcript{ID: id, Filename: filename, Status: TranscriptProcessing, CreatedAt: time.Now()}, nil
}

func (s *PostgresStore) GetTranscript(ctx context.Context, id uuid.UUID) (Transcript, error) {
	var t Transcript
	row := s.db.QueryRowContext(ctx, `SELECT id, filename, status, text, created_at FROM transcripts WHERE id=$1`, id)
	if err := row.Scan(&t.ID, &t.Filename, &t.Status, &t.Text, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transcript{}, ErrTranscriptNotFound
		}
		return Transcript{}, fmt.Errorf("failed to get transcript %s: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) SetTranscriptText(ctx context.Context, id uuid.UUID, text string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE transcripts SET text=$1, status=$2 WHERE id=$3`,
		text, TranscriptReady, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTranscriptNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateTranscriptStatus(ctx context.Context, id uuid.UUID, status TranscriptStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE transcripts SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTranscriptNotFound
	}
	return nil
}
