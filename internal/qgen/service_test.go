package qgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tutorleap/qgen/internal/llm"
)

func serviceReq(format Format, count int) Request {
	return Request{
		Board:   "CBSE",
		Grade:   "8",
		Subject: "Science",
		Format:  format,
		Count:   count,
		Seed:    42,
	}
}

// paperJSON builds a canned response with n valid short answer questions.
func paperJSON(n int) json.RawMessage {
	var items []string
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"question": "External question %d?", "type": "short_answer", "answer": "Answer %d", "difficulty": "Medium", "topic": "Light", "marks": 1}`, i+1, i+1))
	}
	return json.RawMessage(`{"questions": [` + strings.Join(items, ",") + `]}`)
}

func TestGenerate_RejectsInvalidRequest(t *testing.T) {
	svc := New(nil, DefaultConfig())

	req := serviceReq(FormatShortAnswer, 0)
	if _, err := svc.Generate(context.Background(), req); err == nil {
		t.Fatal("expected error for zero count")
	}

	req = serviceReq(Format("TrueFalse"), 5)
	if _, err := svc.Generate(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestGenerate_NilProviderRunsPureFallback(t *testing.T) {
	svc := New(nil, DefaultConfig())

	res, err := svc.Generate(context.Background(), serviceReq(FormatShortAnswer, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 7 {
		t.Fatalf("got %d questions, want 7", len(res.Questions))
	}
	if res.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", res.Source)
	}
	if !strings.HasPrefix(res.ConversionID, "tlc_") {
		t.Errorf("conversion id %q missing tlc_ prefix", res.ConversionID)
	}
}

func TestGenerate_ExternalDeliversFullCount(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: paperJSON(5)})
	svc := New(mock, DefaultConfig())

	res, err := svc.Generate(context.Background(), serviceReq(FormatShortAnswer, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(res.Questions))
	}
	if res.Source != SourceExternal {
		t.Errorf("source = %q, want external", res.Source)
	}
	if mock.CallCount() != 1 {
		t.Errorf("call count = %d, want 1", mock.CallCount())
	}
}

func TestGenerate_TopUpThenFallback(t *testing.T) {
	// Three attempts of two valid questions each leave a shortfall of
	// four, which the fallback fills.
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: paperJSON(2)},
		llm.MockResponse{Content: paperJSON(2)},
		llm.MockResponse{Content: paperJSON(2)},
	)
	svc := New(mock, DefaultConfig())

	res, err := svc.Generate(context.Background(), serviceReq(FormatShortAnswer, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 10 {
		t.Fatalf("got %d questions, want exactly 10", len(res.Questions))
	}
	if res.Source != SourceMixed {
		t.Errorf("source = %q, want mixed", res.Source)
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d, want all 3 attempts spent", mock.CallCount())
	}
	for i, q := range res.Questions {
		if q.ID != i+1 {
			t.Errorf("question %d: id = %d, want contiguous 1-based ids", i, q.ID)
		}
		if err := q.Validate(); err != nil {
			t.Errorf("question %d invalid: %v", i, err)
		}
	}
}

func TestGenerate_StuckProviderFallsBackWithinTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	cfg.CallTimeout = 20 * time.Millisecond

	mock := llm.NewMockProvider(
		llm.MockResponse{Content: paperJSON(5), Delay: time.Minute},
	)
	svc := New(mock, cfg)

	start := time.Now()
	res, err := svc.Generate(context.Background(), serviceReq(FormatShortAnswer, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= time.Second {
		t.Fatalf("generation waited out the stuck call: %s", elapsed)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(res.Questions))
	}
	if res.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", res.Source)
	}
}

func TestGenerate_ProviderFailureFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
	)
	svc := New(mock, DefaultConfig())

	res, err := svc.Generate(context.Background(), serviceReq(FormatShortAnswer, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(res.Questions))
	}
	if res.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", res.Source)
	}
}

func TestGenerate_CanceledContextStillFills(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := llm.NewMockProvider(llm.MockResponse{Content: paperJSON(5)})
	svc := New(mock, DefaultConfig())

	res, err := svc.Generate(ctx, serviceReq(FormatShortAnswer, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("external call made after cancellation")
	}
	if len(res.Questions) != 5 {
		t.Fatalf("got %d questions, want fallback fill of 5", len(res.Questions))
	}
	if res.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", res.Source)
	}
}

func TestGenerate_MixedSplit(t *testing.T) {
	svc := New(nil, DefaultConfig())

	res, err := svc.Generate(context.Background(), serviceReq(FormatMixed, 23))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 23 {
		t.Fatalf("got %d questions, want 23", len(res.Questions))
	}

	counts := map[Kind]int{}
	for i, q := range res.Questions {
		counts[q.Kind]++
		if q.ID != i+1 {
			t.Errorf("question %d: id = %d", i, q.ID)
		}
	}
	if counts[KindMultipleChoice] != 15 {
		t.Errorf("mcq count = %d, want 15", counts[KindMultipleChoice])
	}
	if counts[KindShortAnswer] != 8 {
		t.Errorf("short count = %d, want 8", counts[KindShortAnswer])
	}
}

func TestGenerate_TopUpPromptAvoidsCoveredTopics(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: paperJSON(2)},
		llm.MockResponse{Content: paperJSON(3)},
	)
	svc := New(mock, DefaultConfig())

	_, err := svc.Generate(context.Background(), serviceReq(FormatShortAnswer, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("call count = %d, want 2", mock.CallCount())
	}

	second := mock.Calls[1].Messages[0].Content
	if !strings.Contains(second, "Light") {
		t.Errorf("top-up prompt does not list the covered topic:\n%s", second)
	}
	if !strings.Contains(second, "Number of questions: 3") {
		t.Errorf("top-up prompt does not ask for the remaining count:\n%s", second)
	}
}

func TestGenerate_PartialExternalScenario(t *testing.T) {
	// The model delivers only 2 of 5 requested MCQs; the remaining 3 come
	// from the fallback and the result is tagged mixed.
	partial := json.RawMessage(`{"questions": [
		{"question": "What is 7 x 8?", "type": "multiple_choice", "options": ["54", "56", "58", "64"], "answer": "56", "difficulty": "Easy", "topic": "Multiplication", "marks": 1},
		{"question": "Which fraction equals 0.5?", "type": "multiple_choice", "options": ["1/2", "1/3", "2/3", "3/4"], "answer": "1/2", "difficulty": "Easy", "topic": "Fractions", "marks": 1}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: partial})
	svc := New(mock, DefaultConfig())

	res, err := svc.Generate(context.Background(), Request{
		Board:   "CBSE",
		Grade:   "8",
		Subject: "Mathematics",
		Format:  FormatMCQ,
		Count:   5,
		Seed:    42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("got %d questions, want exactly 5", len(res.Questions))
	}
	if res.Source != SourceMixed {
		t.Errorf("source = %q, want mixed", res.Source)
	}
	if res.Questions[0].Text != "What is 7 x 8?" || res.Questions[1].Text != "Which fraction equals 0.5?" {
		t.Errorf("external questions must come first and keep their content")
	}
	external := map[string]bool{"Multiplication": true, "Fractions": true}
	for i, q := range res.Questions[2:] {
		if err := q.Validate(); err != nil {
			t.Errorf("fallback question %d invalid: %v", i, err)
		}
		if external[q.Topic] {
			t.Errorf("fallback question %d repeats an external topic %q", i, q.Topic)
		}
	}
}

func TestGenerate_DropsWrongKindItems(t *testing.T) {
	// An MCQ request whose response mixes in a short answer item keeps
	// only the multiple choice ones.
	mixed := json.RawMessage(`{"questions": [
		{"question": "Pick one.", "type": "multiple_choice", "options": ["a", "b", "c", "d"], "answer": "a", "difficulty": "Easy", "topic": "Light", "marks": 1},
		{"question": "Explain light.", "type": "short_answer", "answer": "It is radiation.", "difficulty": "Easy", "topic": "Light", "marks": 1}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: mixed})
	svc := New(mock, DefaultConfig())

	res, err := svc.Generate(context.Background(), serviceReq(FormatMCQ, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(res.Questions))
	}
	if res.Source != SourceMixed {
		t.Errorf("source = %q, want mixed (one external, one fallback)", res.Source)
	}
	for i, q := range res.Questions {
		if q.Kind != KindMultipleChoice {
			t.Errorf("question %d: kind = %q, want multiple_choice", i, q.Kind)
		}
	}
}
