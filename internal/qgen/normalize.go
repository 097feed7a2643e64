package qgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizationError reports a payload with no parsable question data at
// all. It is distinct from "parsed but zero valid items" so the
// orchestrator can tell a degraded call from an empty one.
type NormalizationError struct {
	Reason string
	Err    error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("normalize response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("normalize response: %s", e.Reason)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// rawQuestion is the loose shape external payloads arrive in. The original
// service emitted several field spellings over time; all coalescing into
// the canonical Question happens here and nowhere else.
type rawQuestion struct {
	Question       string          `json:"question"`
	Text           string          `json:"text"`
	Type           string          `json:"type"`
	Options        json.RawMessage `json:"options"`
	Answer         string          `json:"answer"`
	CorrectAnswer  string          `json:"correctAnswer"`
	ExpectedAnswer string          `json:"expectedAnswer"`
	Explanation    string          `json:"explanation"`
	Difficulty     string          `json:"difficulty"`
	Topic          string          `json:"topic"`
	Marks          int             `json:"marks"`
}

// Normalize extracts and validates a candidate question array from an
// arbitrary external payload. Items that fail the Question invariants are
// dropped, not repaired; only structurally absent optional fields receive
// defaults. It returns the surviving items and the dropped count.
//
// A payload with no JSON-like span at all yields a *NormalizationError.
func Normalize(payload []byte, req Request) ([]Question, int, error) {
	span, err := extractJSONSpan(string(payload))
	if err != nil {
		return nil, 0, &NormalizationError{Reason: "no JSON span found", Err: err}
	}

	items, err := decodeItems(span)
	if err != nil {
		return nil, 0, &NormalizationError{Reason: "payload is not a question list", Err: err}
	}

	var valid []Question
	dropped := 0
	for _, raw := range items {
		q, ok := coerceItem(raw, req)
		if !ok {
			dropped++
			continue
		}
		valid = append(valid, q)
	}

	return valid, dropped, nil
}

// extractJSONSpan locates the first balanced [...] span in s, falling
// back to the first balanced {...}. Arrays win because the expected
// payload is a question list, while prose around it may carry stray
// braces. The external model sometimes wraps its JSON in prose or fenced
// code blocks; this scan tolerates both.
func extractJSONSpan(s string) (json.RawMessage, error) {
	if span, ok := balancedSpan(s, '[', ']'); ok && json.Valid(span) {
		return span, nil
	}
	if span, ok := balancedSpan(s, '{', '}'); ok && json.Valid(span) {
		return span, nil
	}
	return nil, fmt.Errorf("no balanced '[' or '{' span in payload")
}

// balancedSpan finds the first open byte in s and scans forward to its
// matching close, skipping string literals.
func balancedSpan(s string, open, close byte) (json.RawMessage, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return json.RawMessage(s[start : i+1]), true
			}
		}
	}
	return nil, false
}

// decodeItems accepts either a bare question array or an object carrying
// a "questions" field.
func decodeItems(span json.RawMessage) ([]rawQuestion, error) {
	trimmed := strings.TrimSpace(string(span))
	if strings.HasPrefix(trimmed, "[") {
		var items []rawQuestion
		if err := json.Unmarshal(span, &items); err != nil {
			return nil, fmt.Errorf("decode question array: %w", err)
		}
		return items, nil
	}

	var wrapper struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(span, &wrapper); err != nil {
		return nil, fmt.Errorf("decode question object: %w", err)
	}
	if wrapper.Questions == nil {
		// Possibly a single bare question object.
		var single rawQuestion
		if err := json.Unmarshal(span, &single); err != nil {
			return nil, fmt.Errorf("decode single question: %w", err)
		}
		if single.Question == "" && single.Text == "" {
			return nil, fmt.Errorf("object has no questions field")
		}
		return []rawQuestion{single}, nil
	}
	return wrapper.Questions, nil
}

// coerceItem validates one raw item against the Question invariants,
// applying explicit defaults for absent optional fields. Returns false
// when the item must be dropped.
func coerceItem(raw rawQuestion, req Request) (Question, bool) {
	text := strings.TrimSpace(raw.Question)
	if text == "" {
		text = strings.TrimSpace(raw.Text)
	}
	if text == "" {
		return Question{}, false
	}

	kind := mapKind(raw.Type, req.Format)

	options, ok := decodeOptions(raw.Options)
	if !ok {
		return Question{}, false
	}

	answer := firstNonEmpty(raw.Answer, raw.ExpectedAnswer)

	q := Question{
		Text:        text,
		Kind:        kind,
		Explanation: strings.TrimSpace(raw.Explanation),
		Difficulty:  mapDifficulty(raw.Difficulty),
		Topic:       firstNonEmpty(strings.TrimSpace(raw.Topic), req.Topic),
		Marks:       raw.Marks,
	}
	if q.Marks <= 0 {
		q.Marks = 1
	}

	if kind == KindMultipleChoice {
		if len(options) != 4 {
			return Question{}, false
		}
		q.Options = options
		q.Answer = resolveMCQAnswer(answer, raw.CorrectAnswer, options)
		if q.Answer == "" {
			return Question{}, false
		}
	} else {
		if answer == "" && req.IncludeAnswers {
			return Question{}, false
		}
		q.Answer = answer
	}

	return q, true
}

// decodeOptions accepts options as a string array or as the lettered
// object form {"A": ..., "B": ...} the original API emitted. A present
// but undecodable options field drops the item.
func decodeOptions(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}

	var lettered map[string]string
	if err := json.Unmarshal(raw, &lettered); err == nil {
		var out []string
		for _, letter := range []string{"A", "B", "C", "D"} {
			if v, ok := lettered[letter]; ok {
				out = append(out, v)
			}
		}
		if len(out) > 0 {
			return out, true
		}
	}

	return nil, false
}

// resolveMCQAnswer finds the option the answer refers to. The answer may
// be the option text verbatim or a letter key ("A".."D") into the option
// list. Returns "" when no option matches.
func resolveMCQAnswer(answer, correctLetter string, options []string) string {
	for _, opt := range options {
		if strings.TrimSpace(answer) == strings.TrimSpace(opt) {
			return opt
		}
	}

	letter := strings.ToUpper(strings.TrimSpace(firstNonEmpty(correctLetter, answer)))
	if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'D' {
		idx := int(letter[0] - 'A')
		if idx < len(options) {
			return options[idx]
		}
	}

	return ""
}

func mapKind(t string, fallback Format) Kind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "mcq", "multiple_choice", "multiplechoice", "multiple choice":
		return KindMultipleChoice
	case "short", "short_answer", "shortanswer", "short answer":
		return KindShortAnswer
	case "long", "extended", "essay":
		return KindExtended
	case "":
		return fallbackKind(fallback)
	default:
		// Unknown kinds default to short answer rather than dropping
		// the item.
		return KindShortAnswer
	}
}

func mapDifficulty(d string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
