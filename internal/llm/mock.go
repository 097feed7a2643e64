package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockResponse scripts one Generate call on a MockProvider: either the
// paper JSON to hand back, or the error to fail with. A nonzero Delay
// holds the call open first, which is how tests exercise timeout paths.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	Delay   time.Duration
}

// MockProvider plays back scripted responses in order and keeps every
// request it saw. It stands in for a vendor adapter wherever a test
// needs deterministic paper generation.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

// NewMockProvider creates a MockProvider preloaded with script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

// Generate pops the next scripted response. An exhausted script behaves
// like an unreachable vendor.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var next MockResponse
	scripted := len(m.script) > 0
	if scripted {
		next = m.script[0]
		m.script = m.script[1:]
	}
	m.mu.Unlock()

	if !scripted {
		return nil, &ErrProviderUnavailable{}
	}

	if next.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(next.Delay):
		}
	}

	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse queues another scripted response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, resp)
	m.mu.Unlock()
}

// CallCount reports how many Generate calls the mock has seen.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
