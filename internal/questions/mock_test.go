package questions

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/interview-prep/internal/llm"
)

// MockLLMClient is a mock implementation of llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, system, prompt string, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, system, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, system, prompt, tier)
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, system, prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, system, prompt, tier)
	}
	return "", errors.New("not implemented")
}

func (m *MockLLMClient) GetModel(llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *MockLLMClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func respond(body string) func(context.Context, string, string, llm.ModelTier) (string, error) {
	return func(context.Context, string, string, llm.ModelTier) (string, error) {
		return body, nil
	}
}
