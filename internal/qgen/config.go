package qgen

import "time"

// Config controls the generation loop.
type Config struct {
	// MaxAttempts bounds how many external calls one request may make
	// while topping up toward the requested count.
	MaxAttempts int

	// MaxTokens is the token budget for one model response.
	MaxTokens int

	// Temperature controls model output randomness (0.0-1.0).
	Temperature float64

	// MCQPortion is the number of multiple choice questions in a Mixed
	// paper, capped at the requested count.
	MCQPortion int

	// CallTimeout caps each external model call. A call that exceeds it
	// counts as a failed attempt; the request then falls back rather
	// than hang. Zero means no per-call cap.
	CallTimeout time.Duration
}

// DefaultConfig returns recommended generation defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		MaxTokens:   4000,
		Temperature: 0.7,
		MCQPortion:  15,
		CallTimeout: 30 * time.Second,
	}
}
