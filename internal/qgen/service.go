package qgen

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tutorleap/qgen/internal/llm"
	"github.com/tutorleap/qgen/internal/taxonomy"
)

// Service orchestrates question generation: external model first, the
// deterministic fallback generator for whatever the model fails to
// deliver. A Service with a nil provider is valid and runs pure fallback.
type Service struct {
	provider llm.Provider
	config   Config
}

// New creates a Service. provider may be nil to disable external calls.
func New(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, config: cfg}
}

// Generate produces exactly req.Count questions. It never returns fewer:
// any shortfall after the attempt budget is filled from the fallback
// generator. The only error paths are request validation and context
// cancellation before any question could be produced.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.withDefaults()

	var (
		questions []Question
		source    Source
	)

	if req.Format == FormatMixed {
		split := splitMixed(req, s.config.MCQPortion)

		mcq, mcqSource := s.generatePart(ctx, split.mcq)
		var short []Question
		shortSource := mcqSource
		if split.short.Count > 0 {
			short, shortSource = s.generatePart(ctx, split.short)
		}

		questions = interleave(mcq, short, req.Seed)
		source = combineSources(mcqSource, shortSource)
	} else {
		questions, source = s.generatePart(ctx, req)
		renumber(questions)
	}

	if len(questions) == 0 {
		// Only reachable when the context died before the fallback
		// could run at all.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation canceled: %w", err)
		}
		return nil, fmt.Errorf("generation produced no questions for %s grade %s", req.Subject, req.Grade)
	}

	return &Result{
		Questions:    questions,
		Source:       source,
		ConversionID: newConversionID(),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// generatePart fills one single-format request. It spends up to
// MaxAttempts external calls topping up toward req.Count, then fills the
// remainder from the fallback generator.
func (s *Service) generatePart(ctx context.Context, req Request) ([]Question, Source) {
	topics := s.topicPool(req)

	out := make([]Question, 0, req.Count)
	externalCount := 0

	if s.provider != nil {
		purpose := llm.PurposeGenerate
		for attempt := 0; attempt < s.config.MaxAttempts && len(out) < req.Count; attempt++ {
			if ctx.Err() != nil {
				break
			}

			remaining := req.Count - len(out)
			batch, err := s.generateExternal(llm.WithPurpose(ctx, purpose), req, remaining, coveredTopics(out))
			purpose = llm.PurposeTopUp
			if err != nil {
				// A timed-out call surfaces DeadlineExceeded too; only
				// the parent context dying ends the attempt loop.
				if ctx.Err() != nil {
					break
				}
				continue
			}

			for _, q := range batch {
				if len(out) >= req.Count {
					break
				}
				out = append(out, q)
				externalCount++
			}
		}
	}

	if shortfall := req.Count - len(out); shortfall > 0 {
		out = append(out, GenerateFallback(req, topics, len(out), shortfall)...)
	}

	return out, partSource(externalCount, len(out))
}

// generateExternal makes one model call and normalizes whatever comes
// back. Items failing the schema invariants are dropped here, never
// repaired.
func (s *Service) generateExternal(ctx context.Context, req Request, howMany int, avoid []string) ([]Question, error) {
	if s.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.CallTimeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req, howMany, avoid)},
		},
		Schema:      PaperSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("external generation failed: %w", err)
	}

	valid, dropped, err := Normalize(resp.Content, req)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Printf("dropped %d invalid question(s) from %s response", dropped, resp.Model)
	}

	// A Mixed request never reaches here, so every item must match the
	// part's single kind.
	want := fallbackKind(req.Format)
	kept := valid[:0]
	for _, q := range valid {
		if q.Kind == want {
			kept = append(kept, q)
		}
	}
	return kept, nil
}

// topicPool resolves the fallback topic rotation for a request. A
// specific (non-General) topic leads the pool so the first fallback
// questions stay on the asked topic.
func (s *Service) topicPool(req Request) []string {
	pool := taxonomy.ResolveTopics(req.Subject, taxonomy.GradeBand(req.Grade))
	if req.Topic == "" || strings.EqualFold(req.Topic, "General") {
		return pool
	}

	out := make([]string, 0, len(pool)+1)
	out = append(out, req.Topic)
	for _, t := range pool {
		if !strings.EqualFold(t, req.Topic) {
			out = append(out, t)
		}
	}
	return out
}

// coveredTopics lists topics already present in the result set, for the
// avoid list of top-up prompts.
func coveredTopics(questions []Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Topic)
	}
	return out
}

func partSource(external, total int) Source {
	switch {
	case external == 0:
		return SourceFallback
	case external == total:
		return SourceExternal
	default:
		return SourceMixed
	}
}

func combineSources(a, b Source) Source {
	if a == b {
		return a
	}
	return SourceMixed
}

// newConversionID mints the public identifier for a generated paper.
func newConversionID() string {
	return fmt.Sprintf("tlc_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
