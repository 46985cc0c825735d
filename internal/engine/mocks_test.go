package engine_test

import (
	"context"

	"complyscan.app/engine/common/llm"
)

type mockBackend struct {
	completeFn func(ctx context.Context, req llm.Request) (string, error)
	calls      int
	lastPrompt string
}

func (m *mockBackend) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.calls++
	m.lastPrompt = req.Prompt
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return "", nil
}

func (m *mockBackend) Model() string {
	return "mock-model"
}
