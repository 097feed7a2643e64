package qgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert question paper author for school examinations.

Rules:
- Generate exactly the requested number of questions for the given board, grade, subject, and topic.
- Follow the target board's typical phrasing, rigor, and marking conventions.
- Every question must be self-contained and answerable from standard curriculum material for that grade.
- For multiple choice, provide exactly 4 options where exactly one is correct. Distractors should reflect plausible misconceptions, not random values.
- For short answer and extended questions, do not include options.
- Assign realistic marks: 1 for multiple choice, 1-3 for short answer, 5 for extended questions.
- Spread difficulty across Easy, Medium, and Hard.
- Avoid the topics listed under "already covered" where reasonable alternatives exist.
- Respond with JSON only, matching the provided schema. No prose before or after.`

// buildUserMessage constructs the generation request message. avoidTopics
// lists topics already covered in this result set so top-up calls drift
// toward fresh material.
func buildUserMessage(req Request, howMany int, avoidTopics []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Board: %s\n", req.Board)
	if req.ToBoard != "" && req.ToBoard != req.Board {
		fmt.Fprintf(&b, "Convert to board style: %s\n", req.ToBoard)
	}
	fmt.Fprintf(&b, "Grade: %s\n", req.Grade)
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Question type: %s\n", formatLabel(req.Format))
	fmt.Fprintf(&b, "Number of questions: %d\n", howMany)
	fmt.Fprintf(&b, "Include model answers: %t\n", req.IncludeAnswers)

	b.WriteString("\nAlready covered in this paper:\n")
	b.WriteString(buildAvoidList(avoidTopics))

	return b.String()
}

// buildAvoidList formats covered topics for the prompt, deduplicated in
// first-seen order.
func buildAvoidList(topics []string) string {
	if len(topics) == 0 {
		return "None"
	}

	seen := make(map[string]struct{}, len(topics))
	var b strings.Builder
	n := 0
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, t)
	}
	if n == 0 {
		return "None"
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLabel(f Format) string {
	switch f {
	case FormatMCQ:
		return "multiple choice (4 options each)"
	case FormatExtended:
		return "extended / long answer"
	case FormatShortAnswer:
		return "short answer"
	default:
		return "short answer"
	}
}
