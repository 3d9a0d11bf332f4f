package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// JournalSession is one finished session with its answers.
type JournalSession struct {
	ID        string
	Username  string
	Domain    string
	Mode      string
	Score     int
	Total     int
	Percent   float64
	Elapsed   time.Duration
	Timestamp time.Time
	Answers   []JournalAnswer
}

// JournalAnswer is one answered question.
type JournalAnswer struct {
	QuestionID string
	Domain     string
	Selected   int
	Correct    bool
	TimedOut   bool
	AnsweredAt time.Time
}

// QuestionStat aggregates every recorded answer to one question.
type QuestionStat struct {
	QuestionID string
	Domain     string
	Attempts   int
	Correct    int
	Accuracy   float64
}

// Journal is a per-answer log in SQLite. Statements are built with ent's
// SQL builder and run on database/sql.
type Journal struct {
	db *sql.DB
}

// OpenJournal connects to the SQLite database at dsn, applies pragmas and
// creates the tables.
func OpenJournal(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer; also keeps shared-cache in-memory databases lock free.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Journal{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (j *Journal) DB() *sql.DB {
	return j.db
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// schema is applied on every open; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		username    TEXT NOT NULL,
		domain      TEXT NOT NULL,
		mode        TEXT NOT NULL,
		score       INTEGER NOT NULL,
		total       INTEGER NOT NULL,
		percent     REAL NOT NULL,
		elapsed_ms  INTEGER NOT NULL,
		finished_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		domain      TEXT NOT NULL,
		selected    INTEGER NOT NULL,
		correct     INTEGER NOT NULL,
		timed_out   INTEGER NOT NULL,
		answered_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// RecordSession stores s and its answers in one transaction. Recording the
// same session ID twice fails.
func (j *Journal) RecordSession(ctx context.Context, s JournalSession) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := builder().Insert("sessions").
		Columns("id", "username", "domain", "mode", "score", "total", "percent", "elapsed_ms", "finished_at").
		Values(s.ID, s.Username, s.Domain, s.Mode, s.Score, s.Total, s.Percent,
			s.Elapsed.Milliseconds(), s.Timestamp.UTC().Format(time.RFC3339Nano)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if len(s.Answers) > 0 {
		ins := builder().Insert("answers").
			Columns("session_id", "seq", "question_id", "domain", "selected", "correct", "timed_out", "answered_at")
		for i, a := range s.Answers {
			ins.Values(s.ID, i, a.QuestionID, a.Domain, a.Selected,
				boolInt(a.Correct), boolInt(a.TimedOut), a.AnsweredAt.UTC().Format(time.RFC3339Nano))
		}
		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SessionCount returns how many sessions are recorded.
func (j *Journal) SessionCount(ctx context.Context) (int, error) {
	query, args := builder().Select(entsql.Count("*")).From(entsql.Table("sessions")).Query()

	var n int
	if err := j.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// QuestionStats returns per-question accuracy, least accurate first, ties by
// more attempts then ID. An empty domain or "All" covers every domain. A
// limit of zero returns everything.
func (j *Journal) QuestionStats(ctx context.Context, domain string, limit int) ([]QuestionStat, error) {
	sel := builder().
		Select(
			"question_id",
			"domain",
			entsql.As(entsql.Count("*"), "attempts"),
			entsql.As(entsql.Sum("correct"), "correct_count"),
		).
		From(entsql.Table("answers")).
		GroupBy("question_id", "domain")
	if domain != "" && domain != "All" {
		sel = sel.Where(entsql.EQ("domain", domain))
	}
	query, args := sel.Query()

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query question stats: %w", err)
	}
	defer rows.Close()

	var out []QuestionStat
	for rows.Next() {
		var qs QuestionStat
		if err := rows.Scan(&qs.QuestionID, &qs.Domain, &qs.Attempts, &qs.Correct); err != nil {
			return nil, fmt.Errorf("scan question stat: %w", err)
		}
		if qs.Attempts > 0 {
			qs.Accuracy = float64(qs.Correct) / float64(qs.Attempts)
		}
		out = append(out, qs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question stats: %w", err)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Accuracy != out[b].Accuracy {
			return out[a].Accuracy < out[b].Accuracy
		}
		if out[a].Attempts != out[b].Attempts {
			return out[a].Attempts > out[b].Attempts
		}
		return out[a].QuestionID < out[b].QuestionID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Reset deletes every recorded session and answer.
func (j *Journal) Reset(ctx context.Context) error {
	for _, table := range []string{"answers", "sessions"} {
		query, args := builder().Delete(table).Query()
		if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
