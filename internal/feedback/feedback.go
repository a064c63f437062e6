// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feedback persists user ratings of generated responses in a
// local SQLite database. Feedback is append-only; the service never
// reads it on the answer path.
package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const defaultDBPath = "feedback.db"

// Store manages the feedback SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the feedback database at cfg.DBPath,
// creating the schema if it does not exist.
func NewStore(cfg types.FeedbackConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = defaultDBPath
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS feedback (
			feedback_id TEXT PRIMARY KEY,
			request_id TEXT,
			user_query TEXT NOT NULL,
			ai_response TEXT NOT NULL,
			question_type TEXT,
			clarity INTEGER,
			interpretation INTEGER,
			relevance INTEGER,
			depth INTEGER,
			citations_quality INTEGER,
			reasoning INTEGER,
			topics TEXT,
			strength_tags TEXT,
			weakness_tags TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Submit validates and stores one feedback record. A missing id or
// timestamp is assigned; the assigned id is returned.
func (s *Store) Submit(ctx context.Context, fb types.Feedback) (string, error) {
	if fb.UserQuery == "" || fb.AIResponse == "" {
		return "", fmt.Errorf("feedback requires user_query and ai_response")
	}
	if err := validateMetrics(fb.Metrics); err != nil {
		return "", err
	}

	if fb.FeedbackID == "" {
		fb.FeedbackID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	topicsJSON, _ := json.Marshal(fb.Topics)
	strengthsJSON, _ := json.Marshal(fb.StrengthTags)
	weaknessesJSON, _ := json.Marshal(fb.WeaknessTags)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (
			feedback_id, request_id, user_query, ai_response, question_type,
			clarity, interpretation, relevance, depth, citations_quality, reasoning,
			topics, strength_tags, weakness_tags, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.FeedbackID, fb.RequestID, fb.UserQuery, fb.AIResponse, fb.QuestionType,
		fb.Metrics.Clarity, fb.Metrics.Interpretation, fb.Metrics.Relevance,
		fb.Metrics.Depth, fb.Metrics.CitationsQuality, fb.Metrics.Reasoning,
		string(topicsJSON), string(strengthsJSON), string(weaknessesJSON),
		fb.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting feedback: %w", err)
	}
	return fb.FeedbackID, nil
}

// validateMetrics checks every rating is on the 1-5 scale; zero means
// the caller skipped that metric and is allowed.
func validateMetrics(m types.FeedbackMetrics) error {
	for name, v := range map[string]int{
		"clarity":           m.Clarity,
		"interpretation":    m.Interpretation,
		"relevance":         m.Relevance,
		"depth":             m.Depth,
		"citations_quality": m.CitationsQuality,
		"reasoning":         m.Reasoning,
	} {
		if v < 0 || v > 5 {
			return fmt.Errorf("metric %s = %d out of range 1-5", name, v)
		}
	}
	return nil
}

// List returns the most recent feedback records, newest first. A zero
// limit returns up to 50.
func (s *Store) List(ctx context.Context, limit int) ([]types.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT feedback_id, request_id, user_query, ai_response, question_type,
			clarity, interpretation, relevance, depth, citations_quality, reasoning,
			topics, strength_tags, weakness_tags, created_at
		FROM feedback ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var out []types.Feedback
	for rows.Next() {
		var (
			fb                                   types.Feedback
			topicsJSON, strengthsJSON, weaksJSON sql.NullString
			createdAt                            string
		)
		if err := rows.Scan(
			&fb.FeedbackID, &fb.RequestID, &fb.UserQuery, &fb.AIResponse, &fb.QuestionType,
			&fb.Metrics.Clarity, &fb.Metrics.Interpretation, &fb.Metrics.Relevance,
			&fb.Metrics.Depth, &fb.Metrics.CitationsQuality, &fb.Metrics.Reasoning,
			&topicsJSON, &strengthsJSON, &weaksJSON, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if topicsJSON.Valid {
			json.Unmarshal([]byte(topicsJSON.String), &fb.Topics)
		}
		if strengthsJSON.Valid {
			json.Unmarshal([]byte(strengthsJSON.String), &fb.StrengthTags)
		}
		if weaksJSON.Valid {
			json.Unmarshal([]byte(weaksJSON.String), &fb.WeaknessTags)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			fb.CreatedAt = ts
		}

		out = append(out, fb)
	}
	return out, rows.Err()
}
