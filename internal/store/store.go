// Package store persists fetched article text and the history of analysis
// runs in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/tsawler/textmetrics"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// ErrNotFound is returned when a cached text or run does not exist.
var ErrNotFound = errors.New("not found")

const timeFormat = "2006-01-02T15:04:05.000000Z"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

// gooseMu guards goose's package-level dialect and filesystem settings.
var gooseMu sync.Mutex

// Run summarizes one analysis run.
type Run struct {
	ID         uuid.UUID
	Input      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Articles   int
	Succeeded  int
	Failed     int
}

// Store provides access to the database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to dsn and applies pending migrations. Migration progress is
// written to logger; nil discards it.
func Open(dsn string, logger *log.Logger) (*Store, error) {
	db, dialect, err := OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate(db, dialect, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

func migrate(db *sql.DB, dialect Dialect, logger *log.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	goose.SetLogger(logger)
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations/"+string(dialect)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Dialect returns the dialect used by this store.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetText returns the cached body of an article.
func (s *Store) GetText(ctx context.Context, articleID string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		Rebind(s.dialect, `SELECT body FROM article_texts WHERE article_id = ?`),
		articleID,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query text: %w", err)
	}
	return body, nil
}

// PutText stores or replaces the body of an article.
func (s *Store) PutText(ctx context.Context, articleID, url, body string) error {
	_, err := s.db.ExecContext(ctx,
		Rebind(s.dialect, `INSERT INTO article_texts (article_id, url, body, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (article_id) DO UPDATE SET url = excluded.url, body = excluded.body, fetched_at = excluded.fetched_at`),
		articleID, url, body, fmtTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put text: %w", err)
	}
	return nil
}

// CreateRun records the start of a run over articles inputs.
func (s *Store) CreateRun(ctx context.Context, input string, articles int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		Rebind(s.dialect, `INSERT INTO runs (id, input, started_at, articles) VALUES (?, ?, ?, ?)`),
		id.String(), input, fmtTime(time.Now()), articles,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run complete with its outcome counts.
func (s *Store) FinishRun(ctx context.Context, id uuid.UUID, succeeded, failed int) error {
	res, err := s.db.ExecContext(ctx,
		Rebind(s.dialect, `UPDATE runs SET finished_at = ?, succeeded = ?, failed = ? WHERE id = ?`),
		fmtTime(time.Now()), succeeded, failed, id.String(),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveRows stores the report rows of a run, keeping their order.
func (s *Store) SaveRows(ctx context.Context, id uuid.UUID, rows []textmetrics.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, Rebind(s.dialect, `INSERT INTO run_rows (
		run_id, position, url_id, url, failed,
		positive_score, negative_score, polarity_score, subjectivity_score,
		average_sentence_length, percentage_complex_words, fog_index,
		average_words_per_sentence, complex_word_count, word_count,
		average_syllables_per_word, personal_pronoun_count, average_word_length
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		f := r.Features
		if _, err := stmt.ExecContext(ctx,
			id.String(), i, r.ID, r.URL, r.Failed,
			f.PositiveScore, f.NegativeScore, f.PolarityScore, f.SubjectivityScore,
			f.AvgSentenceLength, f.PercentComplexWords, f.FogIndex,
			f.AvgWordsPerSentence, f.ComplexWordCount, f.WordCount,
			f.SyllablesPerWord, f.PersonalPronouns, f.AvgWordLength,
		); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rows: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		Rebind(s.dialect, `SELECT id, input, started_at, finished_at, articles, succeeded, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a single run.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		Rebind(s.dialect, `SELECT id, input, started_at, finished_at, articles, succeeded, failed
		 FROM runs WHERE id = ?`),
		id.String(),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run      Run
		id       string
		started  string
		finished sql.NullString
	)
	if err := sc.Scan(&id, &run.Input, &started, &finished, &run.Articles, &run.Succeeded, &run.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("parse run id: %w", err)
	}
	run.ID = parsed
	run.StartedAt = parseTime(started)
	if finished.Valid {
		t := parseTime(finished.String)
		run.FinishedAt = &t
	}
	return run, nil
}

// RunRows returns the rows of a run in their original order.
func (s *Store) RunRows(ctx context.Context, id uuid.UUID) ([]textmetrics.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		Rebind(s.dialect, `SELECT url_id, url, failed,
			positive_score, negative_score, polarity_score, subjectivity_score,
			average_sentence_length, percentage_complex_words, fog_index,
			average_words_per_sentence, complex_word_count, word_count,
			average_syllables_per_word, personal_pronoun_count, average_word_length
		 FROM run_rows WHERE run_id = ? ORDER BY position`),
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query run rows: %w", err)
	}
	defer rows.Close()

	var out []textmetrics.Row
	for rows.Next() {
		var r textmetrics.Row
		f := &r.Features
		if err := rows.Scan(&r.ID, &r.URL, &r.Failed,
			&f.PositiveScore, &f.NegativeScore, &f.PolarityScore, &f.SubjectivityScore,
			&f.AvgSentenceLength, &f.PercentComplexWords, &f.FogIndex,
			&f.AvgWordsPerSentence, &f.ComplexWordCount, &f.WordCount,
			&f.SyllablesPerWord, &f.PersonalPronouns, &f.AvgWordLength,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
