// Package qgen is the question generation and validation engine. It turns a
// board/grade/subject/topic request into exactly the requested number of
// schema-valid question records, topping up from a deterministic fallback
// generator whenever the external model under-delivers.
package qgen

import (
	"fmt"
	"time"
)

// Format is the requested paper format.
type Format string

const (
	FormatMCQ         Format = "MCQ"
	FormatShortAnswer Format = "ShortAnswer"
	FormatExtended    Format = "Extended"
	FormatMixed       Format = "Mixed"
)

// Kind describes how a single question is answered.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindShortAnswer    Kind = "short_answer"
	KindExtended       Kind = "extended"
)

// Difficulty is the declared difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Source tags where a result's questions came from.
type Source string

const (
	SourceExternal Source = "external"
	SourceFallback Source = "fallback"
	SourceMixed    Source = "mixed"
)

// maxCount bounds a single generation request.
const maxCount = 100

// Request describes one generation request. It is treated as immutable:
// the engine works on a defaulted copy and never writes back.
type Request struct {
	Board          string
	ToBoard        string // optional, set for board-conversion papers
	Grade          string
	Subject        string
	Topic          string // defaults to "General"
	Format         Format
	Count          int
	IncludeAnswers bool

	// Seed drives fallback phrase variation and Mixed-format shuffling.
	// Zero means "derive from the current time" at generation.
	Seed int64
}

// ErrInvalidRequest reports a request rejected before any network call.
type ErrInvalidRequest struct {
	Reason string
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid generation request: %s", e.Reason)
}

// Validate checks the request invariants. Violations are never coerced.
func (r Request) Validate() error {
	if r.Count <= 0 {
		return &ErrInvalidRequest{Reason: fmt.Sprintf("count must be positive, got %d", r.Count)}
	}
	if r.Count > maxCount {
		return &ErrInvalidRequest{Reason: fmt.Sprintf("count must be at most %d, got %d", maxCount, r.Count)}
	}
	switch r.Format {
	case FormatMCQ, FormatShortAnswer, FormatExtended, FormatMixed:
	default:
		return &ErrInvalidRequest{Reason: fmt.Sprintf("unknown format %q", r.Format)}
	}
	if r.Subject == "" {
		return &ErrInvalidRequest{Reason: "subject is required"}
	}
	if r.Grade == "" {
		return &ErrInvalidRequest{Reason: "grade is required"}
	}
	return nil
}

// withDefaults returns a copy with optional fields filled in.
func (r Request) withDefaults() Request {
	if r.Topic == "" {
		r.Topic = "General"
	}
	if r.Seed == 0 {
		r.Seed = time.Now().UnixNano()
	}
	return r
}

// Question is the canonical output unit.
type Question struct {
	// ID is 1-based, unique and contiguous within a result set.
	ID int `json:"id"`

	Text string `json:"question"`
	Kind Kind   `json:"type"`

	// Options holds exactly 4 entries iff Kind is KindMultipleChoice,
	// and is empty otherwise.
	Options []string `json:"options,omitempty"`

	// Answer is the correct answer. For multiple choice it equals one of
	// Options verbatim.
	Answer string `json:"answer"`

	Explanation string     `json:"explanation,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	Topic       string     `json:"topic"`
	Marks       int        `json:"marks"`
}

// Validate checks the Question schema invariants.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) != 4 {
			return fmt.Errorf("multiple choice question needs exactly 4 options, got %d", len(q.Options))
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.Answer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("answer %q is not one of the options", q.Answer)
		}
	case KindShortAnswer, KindExtended:
		if len(q.Options) != 0 {
			return fmt.Errorf("%s question must not carry options", q.Kind)
		}
	default:
		return fmt.Errorf("unknown question kind %q", q.Kind)
	}
	if q.Marks <= 0 {
		return fmt.Errorf("marks must be positive, got %d", q.Marks)
	}
	return nil
}

// Result is an ordered sequence of exactly Request.Count questions plus
// generation metadata. Once returned it is owned by the caller; the engine
// keeps no reference.
type Result struct {
	Questions    []Question `json:"questions"`
	Source       Source     `json:"source"`
	ConversionID string     `json:"conversionId"`
	GeneratedAt  time.Time  `json:"generatedAt"`
}
