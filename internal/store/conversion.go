package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tutorleap/qgen/internal/qgen"
)

// ErrNotFound reports a lookup for a conversion id that was never saved.
var ErrNotFound = errors.New("conversion not found")

// Conversion is one persisted generation result with its request context.
type Conversion struct {
	ID           string
	ClientKey    string
	Board        string
	ToBoard      string
	Grade        string
	Subject      string
	Topic        string
	Format       qgen.Format
	Count        int
	Source       qgen.Source
	Questions    []qgen.Question
	ProcessingMs int64
	CreatedAt    time.Time
}

// SaveConversion persists a generated paper.
func (s *Store) SaveConversion(ctx context.Context, c Conversion) error {
	questions, err := json.Marshal(c.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversions
			(id, client_key, board, to_board, grade, subject, topic, format,
			 count, source, questions, processing_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ClientKey, c.Board, c.ToBoard, c.Grade, c.Subject, c.Topic,
		string(c.Format), c.Count, string(c.Source), string(questions),
		c.ProcessingMs, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save conversion %s: %w", c.ID, err)
	}
	return nil
}

// GetConversion loads one conversion by id. Returns ErrNotFound when the
// id was never saved.
func (s *Store) GetConversion(ctx context.Context, id string) (*Conversion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_key, board, to_board, grade, subject, topic, format,
		       count, source, questions, processing_ms, created_at
		FROM conversions WHERE id = ?`, id)

	c, err := scanConversion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conversion %s: %w", id, err)
	}
	return c, nil
}

// ListConversions returns the most recent conversions for a client key,
// newest first.
func (s *Store) ListConversions(ctx context.Context, clientKey string, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_key, board, to_board, grade, subject, topic, format,
		       count, source, questions, processing_ms, created_at
		FROM conversions
		WHERE client_key = ?
		ORDER BY created_at DESC
		LIMIT ?`, clientKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversion(row rowScanner) (*Conversion, error) {
	var (
		c         Conversion
		format    string
		source    string
		questions string
	)
	err := row.Scan(&c.ID, &c.ClientKey, &c.Board, &c.ToBoard, &c.Grade,
		&c.Subject, &c.Topic, &format, &c.Count, &source, &questions,
		&c.ProcessingMs, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.Format = qgen.Format(format)
	c.Source = qgen.Source(source)
	if err := json.Unmarshal([]byte(questions), &c.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return &c, nil
}
