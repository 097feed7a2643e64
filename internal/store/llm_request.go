package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tutorleap/qgen/internal/llm"
)

// RecordLLMRequest implements llm.Recorder, appending one provider call
// to the llm_requests table.
func (s *Store) RecordLLMRequest(ctx context.Context, rec llm.RequestRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_requests
			(provider, model, purpose, latency_ms, success, input_tokens,
			 output_tokens, cost_usd, request_body, response_body,
			 error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Provider, rec.Model, rec.Purpose, rec.LatencyMs, rec.Success,
		rec.InputTokens, rec.OutputTokens, rec.CostUSD, rec.RequestBody,
		rec.ResponseBody, rec.ErrorMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record llm request: %w", err)
	}
	return nil
}

// LLMRequestStats summarizes accumulated provider usage.
type LLMRequestStats struct {
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// LLMStats aggregates the llm_requests table.
func (s *Store) LLMStats(ctx context.Context) (*LLMRequestStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0),
		       COALESCE(SUM(cost_usd), 0)
		FROM llm_requests`)

	var stats LLMRequestStats
	err := row.Scan(&stats.Requests, &stats.Failures, &stats.InputTokens,
		&stats.OutputTokens, &stats.CostUSD)
	if err != nil {
		return nil, fmt.Errorf("llm stats: %w", err)
	}
	return &stats, nil
}
