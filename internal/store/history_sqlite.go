package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/internal/models"
)

// sqliteHistory stores one row per turn; the autoincrement id orders a session.
type sqliteHistory struct {
	db *sql.DB
}

func NewSQLiteHistory(path string) (*sqliteHistory, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &sqliteHistory{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}
	return s, nil
}

func (s *sqliteHistory) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		uid        TEXT NOT NULL,
		session_id TEXT NOT NULL,
		prompt     TEXT NOT NULL,
		answer     TEXT NOT NULL,
		prompt_at  TEXT NOT NULL,
		answer_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(uid, session_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteHistory) Close() error {
	return s.db.Close()
}

func (s *sqliteHistory) Get(ctx context.Context, uid, sessionID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt, answer, prompt_at, answer_at FROM turns
		 WHERE uid = ? AND session_id = ? ORDER BY id`,
		uid, sessionID)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list guide turns", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var turn models.Turn
		var promptAt, answerAt string
		if err := rows.Scan(&turn.Prompt, &turn.Answer, &promptAt, &answerAt); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan guide turn", err)
		}
		turn.PromptAt, _ = time.Parse(time.RFC3339Nano, promptAt)
		turn.AnswerAt, _ = time.Parse(time.RFC3339Nano, answerAt)
		out = append(out, turn.Messages()...)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list guide turns", err)
	}
	return out, nil
}

func (s *sqliteHistory) Append(ctx context.Context, uid, sessionID string, human, assistant models.Message) error {
	turn := models.NewTurn(human, assistant)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (uid, session_id, prompt, answer, prompt_at, answer_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uid, sessionID, turn.Prompt, turn.Answer,
		turn.PromptAt.UTC().Format(time.RFC3339Nano),
		turn.AnswerAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save guide turn", err)
	}
	return nil
}
